package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/polisai/elucidation-go/pkg/result"
)

// PrometheusObserver records client outcomes as Prometheus metrics.
type PrometheusObserver struct {
	outcomes *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusObserver registers the observer's collectors with reg, or the
// default registerer when reg is nil.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elucidation_client_outcomes_total",
				Help: "Total number of elucidation client operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elucidation_client_failures_total",
				Help: "Total number of failed elucidation client operations by failure kind",
			},
			[]string{"operation", "kind"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "elucidation_client_duration_seconds",
				Help:    "Elucidation client operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
	}

	reg.MustRegister(o.outcomes, o.failures, o.latency)
	return o
}

// ObserveOutcome implements client.Observer.
func (o *PrometheusObserver) ObserveOutcome(_ context.Context, operation string, res result.Result, elapsed time.Duration) {
	status := string(res.Status())

	o.outcomes.WithLabelValues(operation, status).Inc()
	o.latency.WithLabelValues(operation, status).Observe(elapsed.Seconds())

	if res.Status() == result.StatusError {
		o.failures.WithLabelValues(operation, FailureKind(res)).Inc()
	}
}
