package provider

import (
	"context"
	"time"

	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/observability"
)

// WithLogging logs every call at debug, and failures at warn.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return Around[I, O](func(ctx context.Context, name string, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)
		fields := logger.DurationFields(name, time.Since(start))
		if err != nil {
			log.WithContext(ctx).Warn("provider execute failed", logger.MergeWithError(fields, err))
		} else {
			log.WithContext(ctx).Debug("provider execute ok", fields)
		}
		return err
	})
}

// WithMetrics records operation count and duration, plus an error count.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return Around[I, O](func(ctx context.Context, name string, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)
		status := "ok"
		if err != nil {
			status = "error"
			metrics.RecordError(ctx, "execute", name)
		}
		metrics.RecordOperation(ctx, name, "execute", status, time.Since(start))
		return err
	})
}

// WithTracing opens a "<service>.<provider>" span around every call.
func WithTracing[I, O any](service string) Middleware[I, O] {
	return Around[I, O](func(ctx context.Context, name string, next func(context.Context) error) error {
		ctx, span := observability.StartSpan(ctx, service+"."+name)
		defer span.End()
		observability.SetSpanAttribute(ctx, observability.AttrOperationName, name)
		err := next(ctx)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return err
	})
}
