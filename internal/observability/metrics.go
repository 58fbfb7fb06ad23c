// Package observability provides Prometheus metrics for the feed pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the refresh pipeline.
type Metrics struct {
	// FetchesTotal counts feed fetches by outcome: success, network,
	// http, parse, or stale (discarded out-of-order completion).
	FetchesTotal *prometheus.CounterVec

	// FetchDuration observes the wall time of each feed fetch.
	FetchDuration prometheus.Histogram

	// EventCount tracks the size of the last good snapshot.
	EventCount prometheus.Gauge

	// ControllerRunning is 1 while the refresh loop is active.
	ControllerRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.EventCount,
		m.ControllerRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct the controller repeatedly without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "feed_fetches_total",
			Help:      "Feed fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakewatch",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a feed fetch including decoding.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		EventCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakewatch",
			Name:      "snapshot_events",
			Help:      "Number of events in the last good snapshot.",
		}),
		ControllerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quakewatch",
			Name:      "controller_running",
			Help:      "1 while the periodic refresh loop is active.",
		}),
	}
}
