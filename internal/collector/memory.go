// Memory collector: gathers virtual memory and swap usage.
// Uses gopsutil, which reads /proc/meminfo on Linux.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryResult holds the collected memory usage data in bytes.
type MemoryResult struct {
	Total       uint64      `json:"total" yaml:"total"`
	Available   uint64      `json:"available" yaml:"available"`
	Used        uint64      `json:"used" yaml:"used"`
	Free        uint64      `json:"free" yaml:"free"`
	UsedPercent float64     `json:"used_percent" yaml:"used_percent"`
	Cached      uint64      `json:"cached,omitempty" yaml:"cached,omitempty"`
	Buffers     uint64      `json:"buffers,omitempty" yaml:"buffers,omitempty"`
	Swap        *SwapResult `json:"swap,omitempty" yaml:"swap,omitempty"`
}

// SwapResult holds swap usage in bytes.
type SwapResult struct {
	Total       uint64  `json:"total" yaml:"total"`
	Used        uint64  `json:"used" yaml:"used"`
	Free        uint64  `json:"free" yaml:"free"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
}

// MemoryCollector collects RAM and swap usage.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the category name.
func (c *MemoryCollector) Name() string { return "memory" }

// Collect gathers memory usage. Swap is omitted when it cannot be read.
func (c *MemoryCollector) Collect(ctx context.Context) (any, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	result := MemoryResult{
		Total:       v.Total,
		Available:   v.Available,
		Used:        v.Used,
		Free:        v.Free,
		UsedPercent: v.UsedPercent,
		Cached:      v.Cached,
		Buffers:     v.Buffers,
	}

	if s, err := mem.SwapMemoryWithContext(ctx); err == nil {
		result.Swap = &SwapResult{
			Total:       s.Total,
			Used:        s.Used,
			Free:        s.Free,
			UsedPercent: s.UsedPercent,
		}
	}

	return result, nil
}

// IsAvailable returns true; memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }
