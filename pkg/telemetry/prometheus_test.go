package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polisai/elucidation-go/pkg/client"
	"github.com/polisai/elucidation-go/pkg/result"
)

func TestPrometheusObserver_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)
	ctx := context.Background()

	obs.ObserveOutcome(ctx, client.OpRecordEvent, result.OK(), 10*time.Millisecond)
	obs.ObserveOutcome(ctx, client.OpRecordEvent, result.FromErrorMessage("Status: 500"), 20*time.Millisecond)
	obs.ObserveOutcome(ctx, client.OpTrackIdentifiers, result.FromError(errors.New("refused")), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.outcomes.WithLabelValues("record_event", "SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.outcomes.WithLabelValues("record_event", "ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.outcomes.WithLabelValues("track_identifiers", "ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.failures.WithLabelValues("record_event", "protocol")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.failures.WithLabelValues("track_identifiers", "fault")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["elucidation_client_outcomes_total"])
	assert.True(t, names["elucidation_client_failures_total"])
	assert.True(t, names["elucidation_client_duration_seconds"])
}

func TestPrometheusObserverWithClient(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)

	c := client.Of[string](nil, nil, client.WithObserver(obs))
	c.RecordNewEvent(context.Background(), "ignored")

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.outcomes.WithLabelValues("record_event", "SKIPPED")))
	assert.Equal(t, 0, testutil.CollectAndCount(obs.failures))
}
