// Package pipeline runs one collect-then-analyse invocation.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/analyst/internal/analysis"
	"github.com/Guliveer/vitalis/analyst/internal/errs"
	"github.com/Guliveer/vitalis/analyst/internal/metrics"
	"github.com/Guliveer/vitalis/analyst/internal/models"
)

// SnapshotSource produces one snapshot. *collector.Registry satisfies it.
type SnapshotSource interface {
	Collect(ctx context.Context) (*models.Snapshot, error)
}

// Analyzer sends one request. *analysis.Client satisfies it.
type Analyzer interface {
	Send(ctx context.Context, req *analysis.Request) (*analysis.Result, error)
}

// Options describes one run.
type Options struct {
	Source      SnapshotSource
	Analyzer    Analyzer
	Client      analysis.ClientConfig
	CollectOnly bool
	Recorder    *metrics.Recorder
	Logger      *zap.Logger

	// OnSend is called just before the request goes out.
	OnSend func()
}

// Output is what a run produced. Result is nil for collect-only runs.
type Output struct {
	Snapshot *models.Snapshot
	Result   *analysis.Result
}

// Run collects a snapshot and, unless CollectOnly is set, sends it for
// analysis. It returns an error only for fatal conditions: no telemetry could
// be collected, or the analysis configuration is invalid. A failed analysis
// call is reported in Output.Result.
func Run(ctx context.Context, opts Options) (*Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("pipeline")

	if opts.Source == nil {
		return nil, errs.New(errs.CodeInternal, "no snapshot source configured")
	}

	// Checked before collection so a missing key fails fast.
	if !opts.CollectOnly {
		if opts.Analyzer == nil {
			return nil, errs.New(errs.CodeInternal, "no analyzer configured")
		}
		if err := opts.Client.Validate(); err != nil {
			return nil, err
		}
	}

	snap, err := opts.Source.Collect(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Snapshot collected",
		zap.Int("categories", snap.Len()),
		zap.Strings("failed", snap.Failed()))

	out := &Output{Snapshot: snap}
	if opts.CollectOnly {
		return out, nil
	}

	req, err := analysis.BuildRequest(snap, opts.Client)
	if err != nil {
		return nil, err
	}

	if opts.OnSend != nil {
		opts.OnSend()
	}
	start := time.Now()
	result, err := opts.Analyzer.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	opts.Recorder.ObserveAnalysis(string(result.State()), time.Since(start))

	out.Result = result
	return out, nil
}
