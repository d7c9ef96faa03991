// Network I/O collector: gathers cumulative counters across all interfaces.
// Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"
)

// NetworkResult holds cumulative network counters since boot.
type NetworkResult struct {
	Interfaces  int    `json:"interfaces" yaml:"interfaces"`
	BytesSent   uint64 `json:"bytes_sent" yaml:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv" yaml:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent" yaml:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv" yaml:"packets_recv"`
	ErrIn       uint64 `json:"errors_in" yaml:"errors_in"`
	ErrOut      uint64 `json:"errors_out" yaml:"errors_out"`
	DropIn      uint64 `json:"drops_in" yaml:"drops_in"`
	DropOut     uint64 `json:"drops_out" yaml:"drops_out"`
}

// NetworkCollector collects network I/O counters.
type NetworkCollector struct{}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Name returns the category name.
func (c *NetworkCollector) Name() string { return "network" }

// Collect sums the per-interface counters. A snapshot is a single reading, so
// these are totals since boot rather than rates.
func (c *NetworkCollector) Collect(ctx context.Context) (any, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	return sumCounters(counters), nil
}

// IsAvailable returns true; network metrics are available on all platforms.
func (c *NetworkCollector) IsAvailable() bool { return true }

func sumCounters(counters []net.IOCountersStat) NetworkResult {
	result := NetworkResult{Interfaces: len(counters)}
	for _, ic := range counters {
		result.BytesSent += ic.BytesSent
		result.BytesRecv += ic.BytesRecv
		result.PacketsSent += ic.PacketsSent
		result.PacketsRecv += ic.PacketsRecv
		result.ErrIn += ic.Errin
		result.ErrOut += ic.Errout
		result.DropIn += ic.Dropin
		result.DropOut += ic.Dropout
	}
	return result
}
