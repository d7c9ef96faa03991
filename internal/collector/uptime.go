// System uptime collector: gathers seconds since boot and the boot time.
// Uses gopsutil host.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// UptimeResult holds uptime information.
type UptimeResult struct {
	Seconds  uint64 `json:"seconds" yaml:"seconds"`
	BootTime string `json:"boot_time" yaml:"boot_time"`
}

// UptimeCollector collects system uptime.
type UptimeCollector struct{}

// NewUptimeCollector creates a new uptime collector.
func NewUptimeCollector() *UptimeCollector {
	return &UptimeCollector{}
}

// Name returns the category name.
func (c *UptimeCollector) Name() string { return "uptime" }

// Collect gathers uptime in seconds and the boot time as RFC3339.
func (c *UptimeCollector) Collect(ctx context.Context) (any, error) {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, err
	}
	result := UptimeResult{Seconds: uptime}
	if boot, err := host.BootTimeWithContext(ctx); err == nil {
		result.BootTime = time.Unix(int64(boot), 0).UTC().Format(time.RFC3339)
	}
	return result, nil
}

// IsAvailable returns true; uptime is available on all platforms.
func (c *UptimeCollector) IsAvailable() bool { return true }
