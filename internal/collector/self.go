// Own-process collector. Reports the analyst's PID, CPU times and, on Linux,
// the fields of /proc/<pid>/status.
package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// CPUTimes holds CPU seconds spent by this process and its waited-for children.
type CPUTimes struct {
	User           float64 `json:"user" yaml:"user"`
	System         float64 `json:"system" yaml:"system"`
	ChildrenUser   float64 `json:"children_user" yaml:"children_user"`
	ChildrenSystem float64 `json:"children_system" yaml:"children_system"`
}

// SelfResult holds information about the running analyst process.
type SelfResult struct {
	PID            int               `json:"pid" yaml:"pid"`
	ElapsedSeconds float64           `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	CPUTime        *CPUTimes         `json:"cpu_time,omitempty" yaml:"cpu_time,omitempty"`
	Status         map[string]string `json:"status,omitempty" yaml:"status,omitempty"`
}

// SelfCollector collects information about the current process.
type SelfCollector struct {
	started    time.Time
	statusPath string
}

// NewSelfCollector creates a collector measuring elapsed time from started.
func NewSelfCollector(started time.Time) *SelfCollector {
	return &SelfCollector{
		started:    started,
		statusPath: fmt.Sprintf("/proc/%d/status", os.Getpid()),
	}
}

// Name returns the category name.
func (c *SelfCollector) Name() string { return "process" }

// Collect gathers PID, elapsed time, CPU times and status fields. CPU times
// and status are best effort; missing sources are omitted.
func (c *SelfCollector) Collect(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := SelfResult{
		PID:            os.Getpid(),
		ElapsedSeconds: time.Since(c.started).Seconds(),
	}

	if times, err := cpuTimes(); err == nil {
		result.CPUTime = times
	}

	if f, err := os.Open(c.statusPath); err == nil {
		fields, err := parseKeyValue(f, ":")
		f.Close()
		if err == nil && len(fields) > 0 {
			result.Status = fields
		}
	}

	return result, nil
}

// IsAvailable returns true; the current process can always describe itself.
func (c *SelfCollector) IsAvailable() bool { return true }

// parseKeyValue reads "key<delim>value" lines. Blank lines and lines without
// the delimiter are skipped; keys and values are trimmed.
func parseKeyValue(r io.Reader, delim string) (map[string]string, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, delim)
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}
