package collector

import (
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/analyst/internal/platform"
)

// Options tunes the default collector set.
type Options struct {
	TopProcesses      int
	CPUSampleInterval time.Duration
	Timeout           time.Duration
	Started           time.Time
	Platform          platform.Platform
}

// Default returns a registry with every standard telemetry category registered.
func Default(opts Options, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Started.IsZero() {
		opts.Started = time.Now()
	}
	if opts.Platform == nil {
		opts.Platform = platform.New()
	}

	r := NewRegistry(logger)
	r.SetTimeout(opts.Timeout)

	named := r.logger
	r.Register(NewHostInfoCollector())
	r.Register(NewCPUCollector(opts.CPUSampleInterval))
	r.Register(NewLoadCollector())
	r.Register(NewMemoryCollector())
	r.Register(NewDiskCollector(named.Named("disk")))
	r.Register(NewNetworkCollector())
	r.Register(NewProcessCollector(opts.TopProcesses))
	r.Register(NewUptimeCollector())
	r.Register(NewTemperatureCollector(opts.Platform, named.Named("temperature")))
	r.Register(NewSelfCollector(opts.Started))
	r.Register(NewServicesCollector())
	return r
}
