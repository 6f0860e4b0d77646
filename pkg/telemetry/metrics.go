package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/polisai/elucidation-go/pkg/result"
)

var (
	metricsOnce      sync.Once
	metricsInitErr   error
	outcomeCounter   metric.Int64Counter
	failureCounter   metric.Int64Counter
	latencyHistogram metric.Float64Histogram
)

// OutcomeMetrics captures the fields needed to record one client outcome.
type OutcomeMetrics struct {
	Operation string
	Result    result.Result
	Duration  time.Duration
}

// RecordOutcome emits counters and histograms describing a client outcome.
func RecordOutcome(ctx context.Context, m OutcomeMetrics) {
	if err := ensureMetrics(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("elucidation.operation", m.Operation),
		attribute.String("elucidation.status", string(m.Result.Status())),
	}

	outcomeCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	if m.Duration > 0 {
		latencyHistogram.Record(ctx, float64(m.Duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	}

	if m.Result.Status() == result.StatusError {
		failureCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("elucidation.operation", m.Operation),
			attribute.String("elucidation.failure", FailureKind(m.Result)),
		))
	}
}

// FailureKind classifies a failed result: "protocol" for error messages,
// "fault" for captured errors, "none" otherwise.
func FailureKind(res result.Result) string {
	switch {
	case res.HasCause():
		return "fault"
	case res.HasErrorMessage():
		return "protocol"
	default:
		return "none"
	}
}

// OTelObserver records client outcomes through the global OTel MeterProvider.
type OTelObserver struct{}

// NewOTelObserver returns an observer backed by the global MeterProvider.
func NewOTelObserver() OTelObserver {
	return OTelObserver{}
}

// ObserveOutcome implements client.Observer.
func (OTelObserver) ObserveOutcome(ctx context.Context, operation string, res result.Result, elapsed time.Duration) {
	RecordOutcome(ctx, OutcomeMetrics{Operation: operation, Result: res, Duration: elapsed})
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("elucidation.client")

		outcomeCounter, metricsInitErr = meter.Int64Counter(
			"elucidation.client.outcomes_total",
			metric.WithDescription("Client operations partitioned by operation and outcome status"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		failureCounter, metricsInitErr = meter.Int64Counter(
			"elucidation.client.failures_total",
			metric.WithDescription("Failed client operations partitioned by failure kind"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		latencyHistogram, metricsInitErr = meter.Float64Histogram(
			"elucidation.client.duration_ms",
			metric.WithDescription("Observed client operation latency"),
			metric.WithUnit("ms"),
		)
	})

	return metricsInitErr
}
