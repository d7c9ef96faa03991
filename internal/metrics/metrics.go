// Package metrics records collection and analysis statistics for a run and
// can export them in the Prometheus text format for node_exporter's textfile
// collector. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns a private Prometheus registry for one process.
type Recorder struct {
	registry *prometheus.Registry

	collectionDuration prometheus.Histogram
	collectorDuration  *prometheus.HistogramVec
	categoriesTotal    *prometheus.CounterVec
	snapshotCategories prometheus.Gauge
	snapshotFailed     prometheus.Gauge
	analysisTotal      *prometheus.CounterVec
	analysisDuration   prometheus.Histogram
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		collectionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyst_snapshot_collection_duration_seconds",
			Help:    "Time taken to collect a complete snapshot",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		}),
		collectorDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyst_collector_duration_seconds",
			Help:    "Time taken by individual collectors",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10},
		}, []string{"collector"}),
		categoriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_collector_runs_total",
			Help: "Collector runs by outcome",
		}, []string{"collector", "status"}),
		snapshotCategories: factory.NewGauge(prometheus.GaugeOpts{
			Name: "analyst_snapshot_valid_categories",
			Help: "Number of categories with data in the last snapshot",
		}),
		snapshotFailed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "analyst_snapshot_failed_categories",
			Help: "Number of categories recorded as collection errors in the last snapshot",
		}),
		analysisTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_analysis_requests_total",
			Help: "Analysis requests by terminal state",
		}, []string{"state"}),
		analysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyst_analysis_request_duration_seconds",
			Help:    "Latency of analysis requests",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
}

// Registry exposes the underlying registry as a gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveCollector records one collector run.
func (r *Recorder) ObserveCollector(name string, d time.Duration, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.collectorDuration.WithLabelValues(name).Observe(d.Seconds())
	r.categoriesTotal.WithLabelValues(name, status).Inc()
}

// ObserveCollection records a finished collection window.
func (r *Recorder) ObserveCollection(d time.Duration, valid, failed int) {
	if r == nil {
		return
	}
	r.collectionDuration.Observe(d.Seconds())
	r.snapshotCategories.Set(float64(valid))
	r.snapshotFailed.Set(float64(failed))
}

// ObserveAnalysis records an analysis request by its terminal state.
func (r *Recorder) ObserveAnalysis(state string, d time.Duration) {
	if r == nil {
		return
	}
	r.analysisTotal.WithLabelValues(state).Inc()
	r.analysisDuration.Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
