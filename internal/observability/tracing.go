package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies this module's spans to whatever TracerProvider
// the host process has registered with otel.SetTracerProvider.
// Registering an actual exporter is the host's job, not this
// package's: it only ever asks otel for a tracer by name.
const TracerName = "dogpilecache"

// Tracer returns the tracer registered under TracerName. If the host
// process never called otel.SetTracerProvider, this is the SDK's
// built-in no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// WalkSpanAttributes carries the per-walk facts worth attaching to a
// suspension-point span.
type WalkSpanAttributes struct {
	KeyPrefix string
	WalkID    string
}

// StartWalkNodeSpan starts a span for one state-machine transition
// within a walk, tagged with the node name and walk attributes.
func StartWalkNodeSpan(ctx context.Context, node string, attrs WalkSpanAttributes) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, "cachecore.walk."+node,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cache.key_prefix", attrs.KeyPrefix),
			attribute.String("cache.walk_id", attrs.WalkID),
		),
	)
	return ctx, span
}

// RecordCacheTier tags the current span with the tier a PollCache call
// classified.
func RecordCacheTier(span trace.Span, tier string) {
	span.SetAttributes(attribute.String("cache.tier", tier))
}

// RecordError records an error on a span and flags it.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.Bool("error", true))
}

// SpanFromContext extracts the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
