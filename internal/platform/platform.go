// Package platform provides host probes that gopsutil does not cover.
package platform

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when a probe has no backing tool on this host.
var ErrUnavailable = errors.New("platform probe unavailable")

// Platform provides OS-specific readings beyond what gopsutil offers.
type Platform interface {
	// GPUTemperature returns the hottest GPU temperature in °C.
	// Returns ErrUnavailable if no GPU tool is present.
	GPUTemperature(ctx context.Context) (float64, error)

	// Name returns the probe backend name.
	Name() string
}

// LookupFunc resolves a command name to its path. Compatible with exec.LookPath.
type LookupFunc func(name string) (string, error)

// RunFunc runs a command and returns its stdout.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

const nvidiaSMI = "nvidia-smi"

// New detects the available probe backend using the system PATH.
func New() Platform {
	return NewWith(exec.LookPath, runCommand)
}

// NewWith detects the probe backend using the given lookup and runner.
func NewWith(lookup LookupFunc, run RunFunc) Platform {
	if _, err := lookup(nvidiaSMI); err == nil {
		return &nvidiaPlatform{run: run}
	}
	return stubPlatform{}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

type nvidiaPlatform struct {
	run RunFunc
}

func (p *nvidiaPlatform) Name() string { return "nvidia" }

// GPUTemperature queries nvidia-smi, which prints one line per GPU.
func (p *nvidiaPlatform) GPUTemperature(ctx context.Context) (float64, error) {
	out, err := p.run(ctx, nvidiaSMI,
		"--query-gpu=temperature.gpu", "--format=csv,noheader,nounits")
	if err != nil {
		return 0, err
	}
	return parseMaxReading(string(out))
}

type stubPlatform struct{}

func (stubPlatform) Name() string { return "stub" }

func (stubPlatform) GPUTemperature(context.Context) (float64, error) {
	return 0, ErrUnavailable
}

// parseMaxReading returns the largest numeric line in out.
func parseMaxReading(out string) (float64, error) {
	found := false
	var hottest float64
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			continue
		}
		if !found || v > hottest {
			hottest = v
			found = true
		}
	}
	if !found {
		return 0, ErrUnavailable
	}
	return hottest, nil
}
