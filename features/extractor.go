package features

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/voicescreen/audio"
	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/observability"
)

// Sub-extractor names used in degradation reports.
const (
	GroupPitch        = "pitch"
	GroupPerturbation = "perturbation"
	GroupNoise        = "noise"
	GroupComplexity   = "complexity"
	GroupSpectral     = "spectral"
)

// Degradation records a sub-extractor that fell back to its default.
type Degradation struct {
	Feature string
	Err     error
}

// Report summarizes one extraction.
type Report struct {
	Degraded     []Degradation
	VoicedFrames int
	Duration     time.Duration
}

// OK reports whether every sub-extractor succeeded.
func (r Report) OK() bool { return len(r.Degraded) == 0 }

// Extractor computes feature vectors. It is safe for concurrent use.
type Extractor struct {
	cfg     Config
	mfcc    *mfccExtractor
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewExtractor validates cfg and precomputes the spectral transforms.
// metrics may be nil.
func NewExtractor(cfg Config, log *logger.Logger, metrics *observability.Metrics) (*Extractor, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("features config: %w", err)
	}
	return &Extractor{
		cfg:     cfg,
		mfcc:    newMFCCExtractor(audio.SampleRate),
		log:     log.WithComponent("features"),
		metrics: metrics,
	}, nil
}

// Extract computes the vector for wf. It never fails: degraded groups are
// zero and listed in the report.
func (e *Extractor) Extract(ctx context.Context, wf *audio.Waveform) (Vector, Report) {
	start := time.Now()
	x := wf.Samples()
	sr := wf.SampleRate()

	var v Vector
	var rep Report
	note := func(d *Degradation) {
		if d == nil {
			return
		}
		rep.Degraded = append(rep.Degraded, *d)
		e.log.WithContext(ctx).Warn("feature degraded", logger.Fields(
			logger.FieldFeature, d.Feature,
			logger.FieldError, d.Err.Error(),
		))
		e.metrics.RecordDegraded(ctx, d.Feature)
	}

	c, d := isolate(GroupPitch, contour{hop: pitchHop}, func() (contour, error) {
		return trackPitch(x, sr, e.cfg), nil
	})
	note(d)
	voiced := c.voiced()
	rep.VoicedFrames = len(voiced)

	ps, d := isolate(GroupPitch, pitchStats{}, func() (pitchStats, error) {
		ps := computePitchStats(voiced)
		if !allFinite([]float64{ps.fo, ps.fhi, ps.flo, ps.spread1, ps.spread2, ps.d2, ps.ppe}) {
			return pitchStats{}, errNonFinite
		}
		return ps, nil
	})
	note(d)
	v[IdxFo], v[IdxFhi], v[IdxFlo] = ps.fo, ps.fhi, ps.flo
	v[IdxSpread1], v[IdxSpread2], v[IdxD2], v[IdxPPE] = ps.spread1, ps.spread2, ps.d2, ps.ppe

	pert, d := isolate(GroupPerturbation, [2]float64{}, func() ([2]float64, error) {
		j, s, err := perturbation(x, sr, c)
		if err != nil {
			return [2]float64{}, err
		}
		return checked([2]float64{j, s})
	})
	note(d)
	v[IdxJitter], v[IdxShimmer] = pert[0], pert[1]

	noise, d := isolate(GroupNoise, [2]float64{}, func() ([2]float64, error) {
		hnr := harmonicsToNoise(x, sr, e.cfg)
		return checked([2]float64{noiseToHarmonics(hnr), hnr})
	})
	note(d)
	v[IdxNHR], v[IdxHNR] = noise[0], noise[1]

	v[IdxDFA], d = isolate(GroupComplexity, 0.0, func() (float64, error) {
		r := dfa(x, e.cfg)
		if !finite(r) {
			return 0, errNonFinite
		}
		return r, nil
	})
	note(d)

	mf, d := isolate(GroupSpectral, make([]float64, MFCCCount), func() ([]float64, error) {
		m, err := e.mfcc.mfcc(x)
		if err != nil {
			return nil, err
		}
		if len(m) != MFCCCount || !allFinite(m) {
			return nil, errNonFinite
		}
		return m, nil
	})
	note(d)
	copy(v[IdxMFCC1:], mf)

	rep.Duration = time.Since(start)
	e.log.WithContext(ctx).Debug("features extracted", logger.Fields(
		logger.FieldSamples, len(x),
		"voiced_frames", rep.VoicedFrames,
		"degraded", len(rep.Degraded),
		logger.FieldDuration, rep.Duration.Milliseconds(),
	))
	return v, rep
}

var errNonFinite = errors.New("non-finite result")

func checked(vals [2]float64) ([2]float64, error) {
	if !finite(vals[0]) || !finite(vals[1]) {
		return [2]float64{}, errNonFinite
	}
	return vals, nil
}

// isolate runs fn, converting an error or panic into def plus a degradation.
func isolate[T any](name string, def T, fn func() (T, error)) (val T, deg *Degradation) {
	defer func() {
		if r := recover(); r != nil {
			val = def
			deg = &Degradation{Feature: name, Err: apperrors.FeatureDegraded(name, fmt.Errorf("panic: %v", r))}
		}
	}()
	v, err := fn()
	if err != nil {
		return def, &Degradation{Feature: name, Err: apperrors.FeatureDegraded(name, err)}
	}
	return v, nil
}
