// Load average collector. Not available on Windows.
package collector

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/load"
)

// LoadResult holds the 1, 5 and 15 minute load averages.
type LoadResult struct {
	Load1  float64 `json:"1min" yaml:"1min"`
	Load5  float64 `json:"5min" yaml:"5min"`
	Load15 float64 `json:"15min" yaml:"15min"`
}

// LoadCollector collects system load averages.
type LoadCollector struct{}

// NewLoadCollector creates a new load average collector.
func NewLoadCollector() *LoadCollector {
	return &LoadCollector{}
}

// Name returns the category name.
func (c *LoadCollector) Name() string { return "load_average" }

// Collect reads the load averages.
func (c *LoadCollector) Collect(ctx context.Context) (any, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return LoadResult{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

// IsAvailable reports false on Windows, which has no load average.
func (c *LoadCollector) IsAvailable() bool { return runtime.GOOS != "windows" }
