package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var (
	apiTracer = otel.Tracer("soccer-rotation/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

// startSpan traces handler methods under the otelhttp request span. Helpers
// such as mapError and the response writers share the handler's span, and
// untraced routes like /healthz never start a root span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !tracesHandler(name) || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
}

func tracesHandler(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix)
}
