package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/polisai/elucidation-go/pkg/domain"
	"github.com/polisai/elucidation-go/pkg/result"
)

const (
	eventPath             = "/elucidate/event"
	trackedIdentifierPath = "/elucidate/trackedIdentifier"

	// RequestIDHeader carries a fresh correlation id on every request.
	RequestIDHeader = "X-Request-ID"

	maxResponseBodyBytes = 64 << 10

	recordEventFailure = "Unable to record connection event due to a problem communicating with the elucidation server. Status: %d, Body: %s"
	trackFailure       = "Unable to load tracked identifiers due to a problem communicating with the elucidation server. Status: %d, Body: %s"

	tracerName = "github.com/polisai/elucidation-go/pkg/recorder"
)

// Doer is the HTTP transport the recorder posts through. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder sends one HTTP request per operation to the elucidation server.
// It holds no mutable state and is safe for concurrent use.
type Recorder struct {
	resolver URIResolver
	client   Doer
	logger   *slog.Logger
	tracer   trace.Tracer
}

type options struct {
	client         Doer
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	timeout        time.Duration
}

// Option configures a Recorder.
type Option func(*options)

// WithHTTPClient replaces the default OTel-instrumented http.Client.
func WithHTTPClient(client Doer) Option {
	return func(o *options) { o.client = client }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTracerProvider sets the provider for recorder spans. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithTimeout bounds each request made by the default client. Zero leaves the
// transport's defaults alone. It has no effect together with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New creates a Recorder that resolves the server address through resolver.
func New(resolver URIResolver, opts ...Option) *Recorder {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.client == nil {
		o.client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(o.tracerProvider)),
			Timeout:   o.timeout,
		}
	}

	return &Recorder{
		resolver: resolver,
		client:   o.client,
		logger:   o.logger,
		tracer:   o.tracerProvider.Tracer(tracerName),
	}
}

// RecordEvent posts event to {base}/elucidate/event.
func (r *Recorder) RecordEvent(ctx context.Context, event domain.ConnectionEvent) (res result.Result) {
	ctx, span := r.startSpan(ctx, "elucidation.record_event",
		attribute.String("elucidation.service_name", event.ServiceName),
		attribute.String("elucidation.communication_type", event.CommunicationType),
	)
	defer func() { endSpan(span, res) }()
	defer recoverInto(&res)

	base, err := r.resolveBaseURI()
	if err != nil {
		return result.FromError(err)
	}

	return r.send(ctx, span, base+eventPath, event, recordEventFailure)
}

// Track posts identifiers to {base}/elucidate/trackedIdentifier/{serviceName}/{communicationType}.
// The path segments are inserted as given.
func (r *Recorder) Track(ctx context.Context, serviceName, communicationType string, identifiers []string) (res result.Result) {
	ctx, span := r.startSpan(ctx, "elucidation.track",
		attribute.String("elucidation.service_name", serviceName),
		attribute.String("elucidation.communication_type", communicationType),
		attribute.Int("elucidation.identifiers.count", len(identifiers)),
	)
	defer func() { endSpan(span, res) }()
	defer recoverInto(&res)

	base, err := r.resolveBaseURI()
	if err != nil {
		return result.FromError(err)
	}

	if identifiers == nil {
		identifiers = []string{}
	}

	target := fmt.Sprintf("%s%s/%s/%s", base, trackedIdentifierPath, serviceName, communicationType)
	return r.send(ctx, span, target, identifiers, trackFailure)
}

func (r *Recorder) resolveBaseURI() (string, error) {
	if r.resolver == nil {
		return "", fmt.Errorf("%w: no resolver configured", domain.ErrNoBaseURI)
	}
	return r.resolver.Resolve()
}

func (r *Recorder) send(ctx context.Context, span trace.Span, target string, payload any, failureFormat string) result.Result {
	span.SetAttributes(attribute.String("url.full", target))

	status, body, err := r.post(ctx, target, payload)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "elucidation request failed",
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		return result.FromError(err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return result.OK()
	}

	r.logger.LogAttrs(ctx, slog.LevelDebug, "elucidation server rejected request",
		slog.String("target", target),
		slog.Int("status", status),
	)
	return result.FromErrorMessage(fmt.Sprintf(failureFormat, status, body))
}

// post performs the single round trip. Errors are returned untouched so the
// caller can capture them as the result's cause.
func (r *Recorder) post(ctx context.Context, target string, payload any) (int, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "failed to close response body", slog.String("error", cerr.Error()))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		// The status is what decides the outcome; a partial body is still useful.
		r.logger.LogAttrs(ctx, slog.LevelDebug, "failed to read response body", slog.String("error", err.Error()))
	}

	return resp.StatusCode, string(data), nil
}

func (r *Recorder) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, res result.Result) {
	span.SetAttributes(attribute.String("elucidation.result.status", string(res.Status())))
	if res.Status() == result.StatusError {
		if res.HasCause() {
			span.RecordError(res.Cause())
		}
		span.SetStatus(codes.Error, res.String())
	}
	span.End()
}

func recoverInto(res *result.Result) {
	if p := recover(); p != nil {
		*res = result.FromPanic(p)
	}
}
