package screening

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kbukum/voicescreen/audio"
	"github.com/kbukum/voicescreen/classifier"
	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/features"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/observability"
)

// Normalizer turns a blob into a canonical waveform.
type Normalizer interface {
	Normalize(ctx context.Context, blob audio.Blob) (*audio.Waveform, error)
}

// Extractor computes a feature vector.
type Extractor interface {
	Extract(ctx context.Context, wf *audio.Waveform) (features.Vector, features.Report)
}

// Classifier labels a feature vector.
type Classifier interface {
	Classify(ctx context.Context, v features.Vector) classifier.Result
}

type cached struct {
	vec      features.Vector
	degraded []string
}

// Orchestrator sequences the pipeline stages. It is safe for concurrent use.
type Orchestrator struct {
	cfg        Config
	normalizer Normalizer
	extractor  Extractor
	classifier Classifier
	cache      *lru.Cache[string, cached]
	log        *logger.Logger
	metrics    *observability.Metrics
}

// New creates an orchestrator. metrics may be nil.
func New(cfg Config, n Normalizer, e Extractor, c Classifier, log *logger.Logger, metrics *observability.Metrics) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("screening config: %w", err)
	}
	o := &Orchestrator{
		cfg:        cfg,
		normalizer: n,
		extractor:  e,
		classifier: c,
		log:        log.WithComponent("screening"),
		metrics:    metrics,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, cached](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating feature cache: %w", err)
		}
		o.cache = cache
	}
	return o, nil
}

// Run screens one recording.
func (o *Orchestrator) Run(ctx context.Context, blob audio.Blob) (Result, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanScreening)
	defer span.End()
	o.metrics.ScreeningStarted(ctx)

	log := o.log.WithContext(ctx)
	observability.SetSpanAttribute(ctx, observability.AttrBytes, len(blob.Data))

	res := Result{Digest: blob.Digest()}
	digest := logger.Fields(logger.FieldDigest, res.Digest[:12])

	if hit, ok := o.lookup(res.Digest); ok {
		res.Features, res.Degraded, res.Cached = hit.vec, slices.Clone(hit.degraded), true
		log.Debug("feature cache hit", digest)
		// the cached vector came from a normalized waveform
		o.transition(ctx, StageNormalized)
	} else {
		wf, err := o.normalize(ctx, blob)
		if err != nil {
			stageErr := &StageError{Stage: StageReceived, Err: err}
			observability.SetSpanError(ctx, stageErr)
			o.metrics.ScreeningFinished(ctx, "error", string(classifier.LabelUnknown))
			log.Warn("screening failed", logger.MergeWithError(logger.Fields(
				logger.FieldStage, string(StageReceived),
				logger.FieldDigest, res.Digest[:12],
			), err))
			return Result{}, stageErr
		}
		o.transition(ctx, StageNormalized)
		observability.SetSpanAttribute(ctx, observability.AttrSamples, wf.Len())

		res.Features, res.Degraded = o.extract(ctx, wf)
		if o.cache != nil {
			o.cache.Add(res.Digest, cached{vec: res.Features, degraded: slices.Clone(res.Degraded)})
		}
	}
	o.transition(ctx, StageFeatureExtracted)

	res.Classification = o.classify(ctx, res.Features)
	o.transition(ctx, StageClassified)

	res.Duration = time.Since(start)
	o.transition(ctx, StageDone)
	observability.SetSpanAttribute(ctx, observability.AttrLabel, string(res.Classification.Label))
	observability.SetSpanAttribute(ctx, observability.AttrProbability, res.Classification.Probability)
	o.metrics.ScreeningFinished(ctx, "ok", string(res.Classification.Label))

	log.Info("screening completed", logger.Fields(
		logger.FieldDigest, res.Digest[:12],
		logger.FieldLabel, string(res.Classification.Label),
		"probability", res.Classification.Probability,
		"degraded", len(res.Degraded),
		"cached", res.Cached,
		logger.FieldDuration, res.Duration.Milliseconds(),
	))
	return res, nil
}

func (o *Orchestrator) lookup(digest string) (cached, bool) {
	if o.cache == nil {
		return cached{}, false
	}
	return o.cache.Get(digest)
}

func (o *Orchestrator) normalize(ctx context.Context, blob audio.Blob) (*audio.Waveform, error) {
	start := time.Now()
	wf, err := o.normalizer.Normalize(ctx, blob)
	o.metrics.RecordStage(ctx, "normalize", time.Since(start))
	if err != nil {
		// anything that is not already a decode error is reported as one
		if !stderrors.Is(err, apperrors.AudioDecode("", nil)) {
			err = apperrors.AudioDecode("normalization failed", err)
		}
		return nil, err
	}
	return wf, nil
}

func (o *Orchestrator) extract(ctx context.Context, wf *audio.Waveform) (features.Vector, []string) {
	start := time.Now()
	vec, rep := o.extractor.Extract(ctx, wf)
	o.metrics.RecordStage(ctx, "extract", time.Since(start))
	var degraded []string
	for _, d := range rep.Degraded {
		degraded = append(degraded, d.Feature)
	}
	return vec, degraded
}

func (o *Orchestrator) classify(ctx context.Context, vec features.Vector) classifier.Result {
	start := time.Now()
	res := o.classifier.Classify(ctx, vec)
	o.metrics.RecordStage(ctx, "classify", time.Since(start))
	return res
}

func (o *Orchestrator) transition(ctx context.Context, to Stage) {
	observability.SetSpanAttribute(ctx, observability.AttrStage, string(to))
	o.log.WithContext(ctx).Debug("stage reached", logger.Fields(logger.FieldStage, string(to)))
}
