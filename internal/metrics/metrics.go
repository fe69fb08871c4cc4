// Package metrics holds the Prometheus collectors shared by the runner and
// the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "promethee"

type Metrics struct {
	Runs               *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
	StaleRuns          prometheus.Counter
	PendingRuns        prometheus.Gauge
	HTTPRequests       *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to
// expose them through promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Executed operations by outcome.",
		}, []string{"operation", "status"}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time spent executing an operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"operation"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Problems rejected before or during evaluation.",
		}, []string{"operation"}),
		StaleRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_runs_total",
			Help:      "Runs failed after exceeding the stale run timeout.",
		}),
		PendingRuns: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_runs",
			Help:      "Runs waiting to be picked up, as of the last stats sweep.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
	}
}

// ObserveRun records one execution. A nil receiver is a no-op so callers can
// run without metrics.
func (m *Metrics) ObserveRun(operation string, d time.Duration, err error, invalid bool) {
	if m == nil {
		return
	}
	status := "completed"
	if err != nil {
		status = "failed"
		if invalid {
			m.ValidationFailures.WithLabelValues(operation).Inc()
		}
	}
	m.Runs.WithLabelValues(operation, status).Inc()
	m.RunDuration.WithLabelValues(operation).Observe(d.Seconds())
}
