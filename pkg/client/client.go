package client

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/polisai/elucidation-go/pkg/domain"
	"github.com/polisai/elucidation-go/pkg/result"
)

// Operation names passed to observers.
const (
	OpRecordEvent      = "record_event"
	OpTrackIdentifiers = "track_identifiers"
)

const (
	notEnabledMessage   = "Recorder not enabled"
	nilInputMessage     = "input is null; cannot create event"
	missingEventMessage = "event is missing; cannot record"
)

// EventRecorder sends events and tracked identifiers to the elucidation server.
// *recorder.Recorder implements it.
type EventRecorder interface {
	RecordEvent(ctx context.Context, event domain.ConnectionEvent) result.Result
	Track(ctx context.Context, serviceName, communicationType string, identifiers []string) result.Result
}

// Converter turns application input into a connection event. Returning a nil
// event with a nil error means the input produced nothing to record.
type Converter[In any] interface {
	Convert(input In) (*domain.ConnectionEvent, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc[In any] func(input In) (*domain.ConnectionEvent, error)

// Convert implements Converter.
func (f ConverterFunc[In]) Convert(input In) (*domain.ConnectionEvent, error) {
	return f(input)
}

// PassThrough returns a converter for callers that already build their own events.
func PassThrough() Converter[domain.ConnectionEvent] {
	return ConverterFunc[domain.ConnectionEvent](func(event domain.ConnectionEvent) (*domain.ConnectionEvent, error) {
		return &event, nil
	})
}

// Observer is told about every outcome a Client produces, skips included.
type Observer interface {
	ObserveOutcome(ctx context.Context, operation string, res result.Result, elapsed time.Duration)
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	logger    *slog.Logger
	observers []Observer
}

// WithLogger sets the logger used to report failed operations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithObserver registers observers that receive every outcome.
func WithObserver(observers ...Observer) Option {
	return func(s *settings) {
		for _, o := range observers {
			if !isNil(o) {
				s.observers = append(s.observers, o)
			}
		}
	}
}

// Client reports connection events and tracked identifiers. Whether it is
// enabled is decided at construction and never changes. Safe for concurrent use.
type Client[In any] struct {
	recorder  EventRecorder
	converter Converter[In]
	enabled   bool
	logger    *slog.Logger
	observers []Observer
}

// Of wires a recorder and a converter. The client is enabled only when both are
// non-nil; a partially configured client behaves exactly like Noop.
func Of[In any](rec EventRecorder, conv Converter[In], opts ...Option) *Client[In] {
	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	enabled := !isNil(rec) && !isNil(conv)
	if !enabled {
		rec, conv = nil, nil
	}

	return &Client[In]{
		recorder:  rec,
		converter: conv,
		enabled:   enabled,
		logger:    s.logger,
		observers: s.observers,
	}
}

// Noop returns a client that skips every operation.
func Noop[In any](opts ...Option) *Client[In] {
	return Of[In](nil, nil, opts...)
}

// Enabled reports whether the client will attempt to record anything.
func (c *Client[In]) Enabled() bool {
	return c.enabled
}

// RecordNewEvent converts input and records the resulting event.
func (c *Client[In]) RecordNewEvent(ctx context.Context, input In) (res result.Result) {
	start := time.Now()
	defer func() { c.finish(ctx, OpRecordEvent, res, time.Since(start)) }()

	if !c.enabled {
		return result.FromSkipMessage(notEnabledMessage)
	}

	if isNil(input) {
		return result.FromErrorMessage(nilInputMessage)
	}

	return c.convertAndRecord(ctx, input)
}

// TrackIdentifiers registers identifiers as known endpoints of serviceName for
// the given communication type.
func (c *Client[In]) TrackIdentifiers(ctx context.Context, serviceName, communicationType string, identifiers []string) (res result.Result) {
	start := time.Now()
	defer func() { c.finish(ctx, OpTrackIdentifiers, res, time.Since(start)) }()

	if !c.enabled {
		return result.FromSkipMessage(notEnabledMessage)
	}

	defer recoverInto(&res)
	return c.recorder.Track(ctx, serviceName, communicationType, identifiers)
}

func (c *Client[In]) convertAndRecord(ctx context.Context, input In) (res result.Result) {
	defer recoverInto(&res)

	event, err := c.converter.Convert(input)
	if err != nil {
		return result.FromError(err)
	}
	if event == nil {
		return result.FromErrorMessage(missingEventMessage)
	}

	return c.recorder.RecordEvent(ctx, *event)
}

func (c *Client[In]) finish(ctx context.Context, operation string, res result.Result, elapsed time.Duration) {
	if res.Status() == result.StatusError {
		attrs := []slog.Attr{
			slog.String("operation", operation),
			slog.Any("result", res),
			slog.Duration("duration", elapsed),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			attrs = append(attrs,
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "elucidation operation failed", attrs...)
	}

	for _, o := range c.observers {
		c.notify(ctx, o, operation, res, elapsed)
	}
}

func (c *Client[In]) notify(ctx context.Context, o Observer, operation string, res result.Result, elapsed time.Duration) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.LogAttrs(ctx, slog.LevelError, "elucidation observer panicked",
				slog.String("operation", operation),
				slog.Any("panic", p),
			)
		}
	}()
	o.ObserveOutcome(ctx, operation, res, elapsed)
}

func recoverInto(res *result.Result) {
	if p := recover(); p != nil {
		*res = result.FromPanic(p)
	}
}

// isNil reports whether v is nil, including typed nil pointers stored in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
