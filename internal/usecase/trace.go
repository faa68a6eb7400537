package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("soccer-rotation/internal/usecase")
	// Ending this span is a no-op.
	untraced = trace.SpanFromContext(context.Background())
)

// startUsecaseSpan opens a child span of the request span. Startup seeding
// and other calls made outside a traced request get no span.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, untraced
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
}
