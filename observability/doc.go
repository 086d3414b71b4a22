// Package observability provides OpenTelemetry tracing and metrics for the
// screening service.
//
// Both exporters are optional and configured through Config:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "voicescreen", version.GetShortVersion(), cfg.Environment)
//	defer shutdown(ctx)
//
// Instruments are created once and shared; a nil *Metrics records nothing so
// library code can accept it unconditionally:
//
//	metrics, err := observability.NewMetrics(observability.Meter("voicescreen"))
//	metrics.RecordStage(ctx, "normalize", time.Since(start))
package observability
