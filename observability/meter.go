package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/kbukum/voicescreen/logger"
)

func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)
	logger.Info("metrics enabled", logger.Fields("endpoint", cfg.Endpoint, "interval", cfg.Interval.String()))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the screening pipeline, its
// providers and the HTTP boundary. A nil *Metrics is valid and records nothing.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter

	screeningTotal        metric.Int64Counter
	stageDuration         metric.Float64Histogram
	featuresDegraded      metric.Int64Counter
	classifierUnavailable metric.Int64Counter
	requestActive         metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.operationTotal, err = meter.Int64Counter("operation.total",
		metric.WithDescription("Total number of provider operations"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of provider operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	); err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}
	if m.screeningTotal, err = meter.Int64Counter("screening.total",
		metric.WithDescription("Completed screenings by status and label"),
	); err != nil {
		return nil, fmt.Errorf("creating screening.total counter: %w", err)
	}
	if m.stageDuration, err = meter.Float64Histogram("screening.stage.duration",
		metric.WithDescription("Duration of each screening stage in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating screening.stage.duration histogram: %w", err)
	}
	if m.featuresDegraded, err = meter.Int64Counter("features.degraded",
		metric.WithDescription("Sub-features replaced by their default value"),
	); err != nil {
		return nil, fmt.Errorf("creating features.degraded counter: %w", err)
	}
	if m.classifierUnavailable, err = meter.Int64Counter("classifier.unavailable",
		metric.WithDescription("Classifications resolved to Unknown"),
	); err != nil {
		return nil, fmt.Errorf("creating classifier.unavailable counter: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("screening.active",
		metric.WithDescription("Screenings currently in flight"),
	); err != nil {
		return nil, fmt.Errorf("creating screening.active gauge: %w", err)
	}

	return m, nil
}

// RecordOperation records a provider execution.
func (m *Metrics) RecordOperation(ctx context.Context, component, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}

// ScreeningStarted increments the in-flight gauge.
func (m *Metrics) ScreeningStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// ScreeningFinished decrements the in-flight gauge and counts the outcome.
func (m *Metrics) ScreeningFinished(ctx context.Context, status, label string) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.screeningTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("label", label),
	))
}

// RecordStage records how long one pipeline stage took.
func (m *Metrics) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordDegraded counts a sub-feature that fell back to its default.
func (m *Metrics) RecordDegraded(ctx context.Context, feature string) {
	if m == nil {
		return
	}
	m.featuresDegraded.Add(ctx, 1, metric.WithAttributes(attribute.String("feature", feature)))
}

// RecordClassifierUnavailable counts a classification resolved to Unknown.
func (m *Metrics) RecordClassifierUnavailable(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.classifierUnavailable.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
