// Package metrics exposes Prometheus instrumentation for report runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all cyberdigest Prometheus metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	StoriesFetched *prometheus.CounterVec
	Summaries      *prometheus.CounterVec
	ReportsWritten prometheus.Counter
	RunDuration    prometheus.Histogram
}

// New registers the metrics on a fresh registry together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		StoriesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cyberdigest_stories_fetched_total",
			Help: "Stories that matched a keyword, by source",
		}, []string{"source"}),
		Summaries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cyberdigest_summaries_total",
			Help: "Summaries written to reports, by outcome (ok, fallback, offline, failed)",
		}, []string{"outcome"}),
		ReportsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "cyberdigest_reports_written_total",
			Help: "Markdown reports written",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cyberdigest_run_duration_seconds",
			Help:    "Wall time of a report run, including aborted runs",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordFetched adds n stories for source.
func (m *Metrics) RecordFetched(source string, n int) {
	if m == nil {
		return
	}
	m.StoriesFetched.WithLabelValues(source).Add(float64(n))
}

// RecordSummary counts one summary by outcome.
func (m *Metrics) RecordSummary(outcome string) {
	if m == nil {
		return
	}
	m.Summaries.WithLabelValues(outcome).Inc()
}

// RecordReport counts one written report.
func (m *Metrics) RecordReport() {
	if m == nil {
		return
	}
	m.ReportsWritten.Inc()
}

// ObserveRun records how long a run took.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}
