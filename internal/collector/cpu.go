// CPU usage collector: gathers overall and per-core utilization plus topology.
// Uses gopsutil for cross-platform CPU metrics.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"
)

// DefaultCPUSampleInterval is how long the overall CPU measurement blocks.
const DefaultCPUSampleInterval = time.Second

// CPUResult holds the collected CPU data.
type CPUResult struct {
	Overall       float64   `json:"overall_percent" yaml:"overall_percent"`
	Cores         []float64 `json:"cores_percent,omitempty" yaml:"cores_percent,omitempty"`
	LogicalCount  int       `json:"logical_count" yaml:"logical_count"`
	PhysicalCount int       `json:"physical_count,omitempty" yaml:"physical_count,omitempty"`
	ModelName     string    `json:"model_name,omitempty" yaml:"model_name,omitempty"`
}

// CPUCollector collects CPU usage metrics.
type CPUCollector struct {
	sample  time.Duration
	percent func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
}

// NewCPUCollector creates a CPU collector that samples overall usage for the
// given interval. Non-positive intervals fall back to DefaultCPUSampleInterval.
func NewCPUCollector(sample time.Duration) *CPUCollector {
	if sample <= 0 {
		sample = DefaultCPUSampleInterval
	}
	return &CPUCollector{sample: sample, percent: cpu.PercentWithContext}
}

// Name returns the category name.
func (c *CPUCollector) Name() string { return "cpu" }

// Collect gathers CPU usage. Only the overall measurement is required;
// per-core usage, counts and model name are best effort.
func (c *CPUCollector) Collect(ctx context.Context) (any, error) {
	// Overall and per-core usage cover the same sampling interval.
	var overall, cores []float64
	var g errgroup.Group
	g.Go(func() error {
		var err error
		overall, err = c.percent(ctx, c.sample, false)
		return err
	})
	g.Go(func() error {
		if perCore, err := c.percent(ctx, c.sample, true); err == nil {
			cores = perCore
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := CPUResult{Cores: cores}
	if len(overall) > 0 {
		result.Overall = overall[0]
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		result.LogicalCount = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		result.PhysicalCount = n
	}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		result.ModelName = infos[0].ModelName
	}

	return result, nil
}

// IsAvailable returns true; CPU metrics are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }
