package client

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/polisai/elucidation-go/pkg/domain"
	"github.com/polisai/elucidation-go/pkg/result"
)

// MockRecorder stands in for the transport recorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordEvent(ctx context.Context, event domain.ConnectionEvent) result.Result {
	args := m.Called(ctx, event)
	return args.Get(0).(result.Result)
}

func (m *MockRecorder) Track(ctx context.Context, serviceName, communicationType string, identifiers []string) result.Result {
	args := m.Called(ctx, serviceName, communicationType, identifiers)
	return args.Get(0).(result.Result)
}

type observation struct {
	operation string
	res       result.Result
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveOutcome(_ context.Context, operation string, res result.Result, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{operation: operation, res: res})
}

func (o *recordingObserver) observations() []observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]observation(nil), o.seen...)
}

type panickingObserver struct{}

func (panickingObserver) ObserveOutcome(context.Context, string, result.Result, time.Duration) {
	panic("observer bug")
}
