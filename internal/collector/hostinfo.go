// Host platform collector. Reports OS, kernel and virtualization details,
// which change rarely, so the first successful read is cached.
package collector

import (
	"context"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
)

// HostInfoResult holds the collected platform information.
type HostInfoResult struct {
	Hostname             string `json:"hostname" yaml:"hostname"`
	OS                   string `json:"os" yaml:"os"`
	Platform             string `json:"platform" yaml:"platform"`
	PlatformFamily       string `json:"platform_family,omitempty" yaml:"platform_family,omitempty"`
	PlatformVersion      string `json:"platform_version" yaml:"platform_version"`
	KernelVersion        string `json:"kernel_version" yaml:"kernel_version"`
	KernelArch           string `json:"kernel_arch" yaml:"kernel_arch"`
	VirtualizationSystem string `json:"virtualization_system,omitempty" yaml:"virtualization_system,omitempty"`
	VirtualizationRole   string `json:"virtualization_role,omitempty" yaml:"virtualization_role,omitempty"`
	GoVersion            string `json:"go_version" yaml:"go_version"`
}

// HostInfoCollector collects platform information.
type HostInfoCollector struct {
	mu    sync.Mutex
	cache *HostInfoResult
}

// NewHostInfoCollector creates a new platform collector.
func NewHostInfoCollector() *HostInfoCollector {
	return &HostInfoCollector{}
}

// Name returns the category name.
func (c *HostInfoCollector) Name() string { return "platform" }

// Collect reads host information. Failed reads are not cached.
func (c *HostInfoCollector) Collect(ctx context.Context) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache != nil {
		return *c.cache, nil
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}

	result := HostInfoResult{
		Hostname:             info.Hostname,
		OS:                   info.OS,
		Platform:             info.Platform,
		PlatformFamily:       info.PlatformFamily,
		PlatformVersion:      info.PlatformVersion,
		KernelVersion:        info.KernelVersion,
		KernelArch:           info.KernelArch,
		VirtualizationSystem: info.VirtualizationSystem,
		VirtualizationRole:   info.VirtualizationRole,
		GoVersion:            runtime.Version(),
	}
	if result.KernelArch == "" {
		result.KernelArch = runtime.GOARCH
	}
	c.cache = &result
	return result, nil
}

// IsAvailable returns true; host info is available on all platforms.
func (c *HostInfoCollector) IsAvailable() bool { return true }
