package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Tracing.Endpoint != "localhost:4318" {
		t.Errorf("expected tracing endpoint 'localhost:4318', got %s", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.Tracing.SampleRate)
	}
	if cfg.Metrics.Interval != 15*time.Second {
		t.Errorf("expected interval 15s, got %v", cfg.Metrics.Interval)
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "svc", "1.0.0", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordOperation(ctx, "transcoder", "execute", "ok", 50*time.Millisecond)
	metrics.RecordError(ctx, "execute", "transcoder")
	metrics.ScreeningStarted(ctx)
	metrics.ScreeningFinished(ctx, "ok", "Healthy")
	metrics.RecordStage(ctx, "normalize", time.Millisecond)
	metrics.RecordDegraded(ctx, "hnr")
	metrics.RecordClassifierUnavailable(ctx, "missing")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var metrics *Metrics
	ctx := context.Background()
	metrics.RecordStage(ctx, "extract", time.Millisecond)
	metrics.RecordDegraded(ctx, "dfa")
	metrics.ScreeningStarted(ctx)
	metrics.ScreeningFinished(ctx, "error", "Unknown")
}

func TestMetricsRecordedValues(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	metrics.RecordDegraded(ctx, "hnr")
	metrics.RecordDegraded(ctx, "hnr")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "features.degraded" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("expected Sum[int64], got %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 2 {
		t.Errorf("expected features.degraded=2, got %d", total)
	}
}

func TestStartSpanAndAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanScreening)
	SetSpanAttribute(ctx, AttrStage, "extract")
	SetSpanAttribute(ctx, AttrSamples, 32000)
	SetSpanAttribute(ctx, AttrProbability, 0.42)
	SetSpanAttribute(ctx, "unsupported", struct{}{})
	SetSpanError(ctx, fmt.Errorf("boom"))

	traceID, spanID := TraceIDs(ctx)
	if traceID == "" || spanID == "" {
		t.Error("expected trace and span IDs from recording span")
	}
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanScreening {
		t.Errorf("expected span name %q, got %q", SpanScreening, spans[0].Name)
	}
	if len(spans[0].Attributes) != 3 {
		t.Errorf("expected 3 attributes, got %d", len(spans[0].Attributes))
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected 1 error event, got %d", len(spans[0].Events))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
}

func TestTraceIDsWithoutSpan(t *testing.T) {
	traceID, spanID := TraceIDs(context.Background())
	if traceID != "" || spanID != "" {
		t.Errorf("expected empty ids, got %q/%q", traceID, spanID)
	}
	SetSpanAttribute(context.Background(), "key", "value")
	SetSpanError(context.Background(), fmt.Errorf("no span"))
}
