// Package telemetry connects the observability hooks to OpenTelemetry.
//
// Setup installs an OTLP/HTTP tracer provider when an endpoint is
// configured. Install registers hook implementations that turn layout
// passes, renders, drag commits and HTTP requests into spans, and cache
// lookups into span events.
package telemetry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/noticeboard/internal/config"
	"github.com/matzehuels/noticeboard/pkg/observability"
)

const instrumentationName = "github.com/matzehuels/noticeboard"

// Setup initialises OpenTelemetry tracing.
//
// Tracing is opt-in: with an empty endpoint Setup returns a no-op shutdown
// function and no global provider is registered. The returned shutdown
// function flushes pending spans and should be deferred by the caller.
func Setup(ctx context.Context, cfg config.Telemetry) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return noop, nil
	}
	name := cfg.ServiceName
	if name == "" {
		name = "noticeboard"
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(name)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Hooks records observability events as spans on a tracer.
type Hooks struct {
	tracer trace.Tracer
}

// NewHooks returns hooks that use the given provider. A nil provider uses
// the global one.
func NewHooks(tp trace.TracerProvider) *Hooks {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Hooks{tracer: tp.Tracer(instrumentationName)}
}

// Install registers h for every hook category.
func Install(h *Hooks) {
	observability.SetPipelineHooks(h)
	observability.SetDragHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// span records a finished operation. Hooks only report completion, so the
// start time is derived from the duration.
func (h *Hooks) span(ctx context.Context, name string, d time.Duration, err error, attrs ...attribute.KeyValue) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, name,
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attrs...),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}

func event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// OnLayoutStart implements [observability.PipelineHooks].
func (h *Hooks) OnLayoutStart(ctx context.Context, mode string, cards int) {
	event(ctx, "layout.start", attribute.String("layout.mode", mode), attribute.Int("layout.cards", cards))
}

// OnLayoutComplete implements [observability.PipelineHooks].
func (h *Hooks) OnLayoutComplete(ctx context.Context, mode string, stats observability.LayoutStats, d time.Duration, err error) {
	h.span(ctx, "layout.pass", d, err,
		attribute.String("layout.mode", mode),
		attribute.Int("layout.cards", stats.Cards),
		attribute.Int("layout.durable", stats.Durable),
		attribute.Int("layout.exhausted", stats.Exhausted),
		attribute.Int("layout.attempts", stats.Attempts),
		attribute.Int("layout.overlap_pairs", stats.OverlapPairs),
		attribute.Float64("layout.overlap_rate", stats.OverlapRate),
		attribute.Bool("layout.changed", stats.Changed),
	)
}

// OnRenderStart implements [observability.PipelineHooks].
func (h *Hooks) OnRenderStart(ctx context.Context, formats []string) {
	event(ctx, "render.start", attribute.StringSlice("render.formats", formats))
}

// OnRenderComplete implements [observability.PipelineHooks].
func (h *Hooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	h.span(ctx, "render", d, err, attribute.StringSlice("render.formats", formats))
}

// OnDragCommit implements [observability.DragHooks].
func (h *Hooks) OnDragCommit(ctx context.Context, cardID string, x, y float64) {
	event(ctx, "drag.commit",
		attribute.String("card.id", cardID),
		attribute.Float64("card.position_x", x),
		attribute.Float64("card.position_y", y),
	)
}

// OnDragComplete implements [observability.DragHooks].
func (h *Hooks) OnDragComplete(ctx context.Context, cardID string, d time.Duration, err error) {
	h.span(ctx, "drag.persist", d, err, attribute.String("card.id", cardID))
}

// OnCacheHit implements [observability.CacheHooks].
func (h *Hooks) OnCacheHit(ctx context.Context, keyType string) {
	event(ctx, "cache.hit", attribute.String("cache.key_type", keyType))
}

// OnCacheMiss implements [observability.CacheHooks].
func (h *Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	event(ctx, "cache.miss", attribute.String("cache.key_type", keyType))
}

// OnCacheSet implements [observability.CacheHooks].
func (h *Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	event(ctx, "cache.set", attribute.String("cache.key_type", keyType), attribute.Int("cache.size", size))
}

// OnRequest implements [observability.HTTPHooks].
func (h *Hooks) OnRequest(ctx context.Context, method, route string) {
	event(ctx, "http.request", attribute.String("http.request.method", method), attribute.String("http.route", route))
}

// OnResponse implements [observability.HTTPHooks].
func (h *Hooks) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	var err error
	if status >= 500 {
		err = httpError(status)
	}
	h.span(ctx, method+" "+route, d, err,
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
}

type httpError int

func (e httpError) Error() string { return "http status " + strconv.Itoa(int(e)) }
