package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Guliveer/vitalis/analyst/internal/errs"
	"github.com/Guliveer/vitalis/analyst/internal/metrics"
	"github.com/Guliveer/vitalis/analyst/internal/models"
)

const (
	// DefaultCollectTimeout bounds the whole collection window.
	DefaultCollectTimeout = 10 * time.Second

	// maxConcurrentCollectors limits how many collectors run at once.
	maxConcurrentCollectors = 8
)

// Registry holds the registered collectors and assembles snapshots from them.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
	recorder   *metrics.Recorder
	timeout    time.Duration
	now        func() time.Time
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:  logger.Named("collector"),
		timeout: DefaultCollectTimeout,
		now:     time.Now,
	}
}

// SetTimeout changes the collection window. Non-positive values are ignored.
func (r *Registry) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// SetRecorder attaches a metrics recorder. A nil recorder disables metrics.
func (r *Registry) SetRecorder(rec *metrics.Recorder) {
	r.recorder = rec
}

// Register adds a collector if it's available on the current host.
// Unavailable collectors are logged and skipped.
func (r *Registry) Register(c Collector) {
	if !c.IsAvailable() {
		r.logger.Debug("Collector not available, skipping", zap.String("name", c.Name()))
		return
	}
	r.collectors = append(r.collectors, c)
	r.logger.Debug("Registered collector", zap.String("name", c.Name()))
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}

type outcome struct {
	data any
	err  error
	done bool
}

// Collect runs every registered collector within one collection window and
// assembles the results into a Snapshot. A collector that fails, panics or
// does not finish in time is recorded as a CollectionError marker under its
// category name. Collect returns a CollectionFailed error only when no
// category could be produced at all.
func (r *Registry) Collect(ctx context.Context) (*models.Snapshot, error) {
	if len(r.collectors) == 0 {
		return nil, errs.New(errs.CodeCollectionFailed, "no collectors registered")
	}

	start := r.now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var mu sync.Mutex
	closed := false
	outcomes := make([]outcome, len(r.collectors))

	// Launching happens off the calling goroutine: g.Go blocks while every
	// slot is busy, and the window below must start immediately.
	finished := make(chan struct{})
	go func() {
		defer close(finished)

		var g errgroup.Group
		g.SetLimit(maxConcurrentCollectors)
		for i, c := range r.collectors {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				collectorStart := time.Now()
				data, err := safeCollect(ctx, c)
				r.recorder.ObserveCollector(c.Name(), time.Since(collectorStart), err)

				mu.Lock()
				defer mu.Unlock()
				// Results that land after the window are discarded.
				if !closed && ctx.Err() == nil {
					outcomes[i] = outcome{data: data, err: err, done: true}
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		r.logger.Warn("Collection window elapsed, marking unfinished collectors",
			zap.Duration("timeout", r.timeout))
	}

	mu.Lock()
	closed = true
	categories := make(map[string]any, len(r.collectors)+1)
	var failures []error
	for i, c := range r.collectors {
		o := outcomes[i]
		switch {
		case !o.done:
			o.err = fmt.Errorf("collection did not finish within %s", r.timeout)
		case o.err == nil && models.IsNil(o.data):
			o.err = errors.New("collector returned no data")
		}
		if o.err != nil {
			r.logger.Warn("Collection failed",
				zap.String("collector", c.Name()),
				zap.Error(o.err))
			failures = append(failures, fmt.Errorf("%s: %w", c.Name(), o.err))
			categories[c.Name()] = models.CollectionError{Error: o.err.Error()}
			continue
		}
		categories[c.Name()] = o.data
	}
	mu.Unlock()

	if len(failures) == len(r.collectors) {
		r.recorder.ObserveCollection(time.Since(start), 0, len(failures))
		return nil, errs.WrapWithContext(errs.CodeCollectionFailed,
			"no telemetry category could be collected",
			errors.Join(failures...),
			map[string]any{"collectors": len(r.collectors)})
	}

	categories["timestamp"] = float64(start.UnixNano()) / float64(time.Second)

	snap := models.NewSnapshot(categories)
	r.recorder.ObserveCollection(time.Since(start), snap.Valid(), len(failures))
	r.logger.Debug("Collected snapshot",
		zap.Int("categories", snap.Len()),
		zap.Int("failed", len(failures)))
	return snap, nil
}

// safeCollect runs a collector and converts a panic into an error.
func safeCollect(ctx context.Context, c Collector) (data any, err error) {
	defer func() {
		if p := recover(); p != nil {
			data = nil
			err = fmt.Errorf("collector panicked: %v", p)
		}
	}()
	return c.Collect(ctx)
}
