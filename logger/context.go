package logger

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	traceKey
)

type traceIDs struct{ trace, span string }

// ContextWithRequestID stores the request ID for WithContext to pick up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the stored request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithTrace stores trace and span IDs for WithContext to pick up.
func ContextWithTrace(ctx context.Context, traceID, spanID string) context.Context {
	return context.WithValue(ctx, traceKey, traceIDs{traceID, spanID})
}

// WithContext adds the request, trace and span IDs found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if ids, ok := ctx.Value(traceKey).(traceIDs); ok {
		zc = zc.Str(FieldTraceID, ids.trace).Str(FieldSpanID, ids.span)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldRequestID, id)
	}
	return &Logger{zl: zc.Logger(), service: l.service}
}

// WithContext derives from the global logger.
func WithContext(ctx context.Context) *Logger { return GetGlobalLogger().WithContext(ctx) }
