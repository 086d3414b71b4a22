package main

import (
	"context"
	"fmt"

	"github.com/kbukum/voicescreen/audio"
	"github.com/kbukum/voicescreen/bootstrap"
	"github.com/kbukum/voicescreen/classifier"
	"github.com/kbukum/voicescreen/features"
	"github.com/kbukum/voicescreen/observability"
	"github.com/kbukum/voicescreen/screening"
)

// services holds the pipeline stages built from config.
type services struct {
	metrics      *observability.Metrics
	transcoder   *audio.FFmpeg
	normalizer   *audio.Normalizer
	extractor    *features.Extractor
	store        *classifier.Store
	orchestrator *screening.Orchestrator
}

// setupObservability starts the configured exporters and builds the
// instruments. Shutdown runs as an OnStop hook.
func setupObservability(ctx context.Context, app *bootstrap.App[*AppConfig]) (*observability.Metrics, error) {
	cfg := app.Cfg
	shutdown, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	app.OnStop(func(ctx context.Context) error { return shutdown(ctx) })

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return metrics, nil
}

// buildServices wires normalizer, extractor, model store and orchestrator,
// and registers the transcoder and model components on app.
func buildServices(ctx context.Context, app *bootstrap.App[*AppConfig], withModel bool) (*services, error) {
	cfg := app.Cfg
	log := app.Logger

	metrics, err := setupObservability(ctx, app)
	if err != nil {
		return nil, err
	}
	s := &services{metrics: metrics}

	if s.transcoder, err = audio.NewFFmpeg(cfg.Transcoder, log, metrics); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(audio.NewTranscoderComponent(s.transcoder, log)); err != nil {
		return nil, err
	}
	s.normalizer = audio.NewNormalizer(cfg.Audio, s.transcoder, log)

	if s.extractor, err = features.NewExtractor(cfg.Features, log, metrics); err != nil {
		return nil, err
	}
	if !withModel {
		return s, nil
	}

	s.store = classifier.NewStore(cfg.Model, log)
	if err := app.RegisterComponent(s.store); err != nil {
		return nil, err
	}
	adapter := classifier.NewAdapter(s.store, log, metrics)

	if s.orchestrator, err = screening.New(cfg.Screening, s.normalizer, s.extractor, adapter, log, metrics); err != nil {
		return nil, err
	}
	return s, nil
}
