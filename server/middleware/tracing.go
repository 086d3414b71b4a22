package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/observability"
)

// Tracing starts a server span per request, continuing any incoming trace
// context, and records the request as a "server" operation.
func Tracing(metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			if id := r.Header.Get(HeaderRequestID); id != "" {
				span.SetAttributes(attribute.String(observability.AttrRequestID, id))
			}
			if traceID, spanID := observability.TraceIDs(ctx); traceID != "" {
				ctx = logger.ContextWithTrace(ctx, traceID, spanID)
			}

			start := time.Now()
			rec := newRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttributes(
				attribute.Int("http.response.status_code", rec.status),
				attribute.Int64("http.response.body.size", rec.written),
			)
			status := "ok"
			if rec.status >= 500 {
				status = "error"
			}
			metrics.RecordOperation(ctx, "server", r.Method+" "+r.URL.Path, status, time.Since(start))
		})
	}
}
