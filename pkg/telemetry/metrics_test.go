package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/polisai/elucidation-go/pkg/client"
	"github.com/polisai/elucidation-go/pkg/result"
)

var (
	_ client.Observer = OTelObserver{}
	_ client.Observer = (*PrometheusObserver)(nil)
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}

	metrics := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			metrics[m.Name] = m
		}
	}
	return metrics
}

func installMeterProvider(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		ResetMetricsForTest()
	})

	ResetMetricsForTest()
	return reader
}

func TestRecordOutcome(t *testing.T) {
	reader := installMeterProvider(t)
	ctx := context.Background()

	RecordOutcome(ctx, OutcomeMetrics{
		Operation: client.OpRecordEvent,
		Result:    result.FromError(errors.New("connection refused")),
		Duration:  150 * time.Millisecond,
	})

	metrics := collectMetrics(t, reader)

	outcomes, ok := metrics["elucidation.client.outcomes_total"]
	if !ok {
		t.Fatalf("missing elucidation.client.outcomes_total metric")
	}
	outcomeData, ok := outcomes.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type for outcomes metric")
	}
	if len(outcomeData.DataPoints) != 1 {
		t.Fatalf("expected 1 datapoint, got %d", len(outcomeData.DataPoints))
	}
	if outcomeData.DataPoints[0].Value != 1 {
		t.Fatalf("expected outcome count 1, got %d", outcomeData.DataPoints[0].Value)
	}
	if value, ok := outcomeData.DataPoints[0].Attributes.Value(attribute.Key("elucidation.status")); !ok || value.AsString() != "ERROR" {
		t.Fatalf("expected elucidation.status attribute to be ERROR, got %v", value)
	}

	failures, ok := metrics["elucidation.client.failures_total"]
	if !ok {
		t.Fatalf("missing elucidation.client.failures_total metric")
	}
	failureData := failures.Data.(metricdata.Sum[int64])
	if value, ok := failureData.DataPoints[0].Attributes.Value(attribute.Key("elucidation.failure")); !ok || value.AsString() != "fault" {
		t.Fatalf("expected elucidation.failure attribute to be fault, got %v", value)
	}

	hist, ok := metrics["elucidation.client.duration_ms"]
	if !ok {
		t.Fatalf("missing elucidation.client.duration_ms metric")
	}
	histData := hist.Data.(metricdata.Histogram[float64])
	if histData.DataPoints[0].Count != 1 {
		t.Fatalf("expected histogram count 1, got %d", histData.DataPoints[0].Count)
	}
	if histData.DataPoints[0].Sum != 150 {
		t.Fatalf("expected histogram sum 150, got %v", histData.DataPoints[0].Sum)
	}
}

func TestOTelObserverWithClient(t *testing.T) {
	reader := installMeterProvider(t)

	c := client.Noop[string](client.WithObserver(NewOTelObserver()))
	c.RecordNewEvent(context.Background(), "input")
	c.TrackIdentifiers(context.Background(), "svc", "HTTP", []string{"/a"})

	metrics := collectMetrics(t, reader)
	outcomes, ok := metrics["elucidation.client.outcomes_total"]
	if !ok {
		t.Fatalf("missing elucidation.client.outcomes_total metric")
	}

	counts := map[string]int64{}
	for _, dp := range outcomes.Data.(metricdata.Sum[int64]).DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("elucidation.operation"))
		status, _ := dp.Attributes.Value(attribute.Key("elucidation.status"))
		counts[op.AsString()+"/"+status.AsString()] += dp.Value
	}

	if counts["record_event/SKIPPED"] != 1 || counts["track_identifiers/SKIPPED"] != 1 {
		t.Fatalf("unexpected outcome counts: %v", counts)
	}
	if _, ok := metrics["elucidation.client.failures_total"]; ok {
		t.Fatalf("skips must not count as failures")
	}
}

func TestFailureKind(t *testing.T) {
	tests := map[string]result.Result{
		"none":     result.OK(),
		"protocol": result.FromErrorMessage("Status: 500"),
		"fault":    result.FromError(errors.New("dial tcp")),
	}
	for expected, res := range tests {
		if got := FailureKind(res); got != expected {
			t.Errorf("FailureKind(%v) = %q, want %q", res, got, expected)
		}
	}
	if got := FailureKind(result.FromSkipMessage("off")); got != "none" {
		t.Errorf("FailureKind(skip) = %q, want none", got)
	}
}
