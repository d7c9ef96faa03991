package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/vitalis/analyst/internal/analysis"
	"github.com/Guliveer/vitalis/analyst/internal/collector"
	"github.com/Guliveer/vitalis/analyst/internal/errs"
	"github.com/Guliveer/vitalis/analyst/internal/metrics"
	"github.com/Guliveer/vitalis/analyst/internal/models"
)

type staticSource struct {
	snap *models.Snapshot
	err  error
}

func (s staticSource) Collect(context.Context) (*models.Snapshot, error) { return s.snap, s.err }

type countingAnalyzer struct {
	calls atomic.Int32
}

func (a *countingAnalyzer) Send(context.Context, *analysis.Request) (*analysis.Result, error) {
	a.calls.Add(1)
	return &analysis.Result{Text: "fine"}, nil
}

func snapshot() *models.Snapshot {
	return models.NewSnapshot(map[string]any{"cpu": map[string]any{"overall": 1.0}})
}

func TestRun_CollectOnlyNeedsNoKey(t *testing.T) {
	analyzer := &countingAnalyzer{}

	out, err := Run(context.Background(), Options{
		Source:      staticSource{snap: snapshot()},
		Analyzer:    analyzer,
		Client:      analysis.DefaultClientConfig(),
		CollectOnly: true,
	})
	require.NoError(t, err)

	assert.Nil(t, out.Result)
	assert.Equal(t, []string{"cpu"}, out.Snapshot.Names())
	assert.Equal(t, int32(0), analyzer.calls.Load())
}

func TestRun_MissingKeyIsFatal(t *testing.T) {
	analyzer := &countingAnalyzer{}

	_, err := Run(context.Background(), Options{
		Source:   staticSource{snap: snapshot()},
		Analyzer: analyzer,
		Client:   analysis.DefaultClientConfig(),
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeConfigInvalid))
	assert.Equal(t, int32(0), analyzer.calls.Load())
}

func TestRun_CollectionFailedIsFatal(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Source:      staticSource{err: errs.Wrap(errs.CodeCollectionFailed, "nothing", errors.New("x"))},
		CollectOnly: true,
	})
	assert.True(t, errs.Is(err, errs.CodeCollectionFailed))
}

func TestRun_EndToEnd(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"invalid api key"}}`)
	}))
	defer srv.Close()

	reg := collector.NewRegistry(nil)
	reg.Register(collector.Func{CategoryName: "cpu", Fn: func(context.Context) (any, error) {
		return map[string]any{"overall": 2.0}, nil
	}})

	cfg := analysis.DefaultClientConfig()
	cfg.Endpoint = srv.URL
	cfg.APIKey = "sk-bad"
	cfg.Timeout = 2 * time.Second

	rec := metrics.New()
	var sent bool
	out, err := Run(context.Background(), Options{
		Source:   reg,
		Analyzer: analysis.New(nil),
		Client:   cfg,
		Recorder: rec,
		OnSend:   func() { sent = true },
	})
	require.NoError(t, err)

	require.NotNil(t, out.Result)
	require.NotNil(t, out.Result.Failure)
	assert.Equal(t, analysis.KindProviderError, out.Result.Failure.Kind)
	assert.Equal(t, "invalid api key", out.Result.Failure.Message)
	assert.True(t, sent)
	assert.Equal(t, int32(1), calls.Load())

	count, err := testutil.GatherAndCount(rec.Registry(), "analyst_analysis_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_NoSource(t *testing.T) {
	_, err := Run(context.Background(), Options{CollectOnly: true})
	assert.True(t, errs.Is(err, errs.CodeInternal))
}
