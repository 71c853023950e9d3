// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// chatRequestsTotal counts completed /api/chat requests, partitioned by
	// outcome: "ok", "timeout", or "error".
	chatRequestsTotal *prometheus.CounterVec

	// chatDurationSeconds records the wall-clock duration of each /api/chat
	// request from receipt to the final JSON response.
	chatDurationSeconds *prometheus.HistogramVec

	// chatActiveRequests is the number of /api/chat turns currently in their
	// tool-calling loop.
	chatActiveRequests prometheus.Gauge

	// indexerRunsTotal counts admin-triggered indexing passes, partitioned by
	// outcome: "ok", "partial" (some documents failed), or "skipped"
	// (already running).
	indexerRunsTotal *prometheus.CounterVec

	// indexerDurationSeconds records the wall-clock duration of completed
	// admin-triggered indexing passes.
	indexerDurationSeconds prometheus.Histogram
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default —
// this keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		chatRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kagent",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total number of /api/chat turns completed, partitioned by outcome.",
		}, []string{"outcome"}),

		chatDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kagent",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of /api/chat turns from receipt to response.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"outcome"}),

		chatActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "kagent",
			Subsystem: "chat",
			Name:      "active_requests",
			Help:      "Number of /api/chat turns currently running their tool-calling loop.",
		}),

		indexerRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kagent",
			Subsystem: "indexer",
			Name:      "runs_total",
			Help:      "Total admin-triggered indexing passes, partitioned by outcome.",
		}, []string{"outcome"}),

		indexerDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kagent",
			Subsystem: "indexer",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of completed admin-triggered indexing passes.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// prometheusTimer starts a stopwatch and returns a function that records the
// elapsed duration against hist under the given outcome label when called.
func prometheusTimer(hist *prometheus.HistogramVec) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		hist.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}
