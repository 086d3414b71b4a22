package audio

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
)

// Normalizer turns blobs into canonical waveforms.
type Normalizer struct {
	cfg Config
	tc  Transcoder
	log *logger.Logger
}

// NewNormalizer creates a Normalizer using tc for decoding.
func NewNormalizer(cfg Config, tc Transcoder, log *logger.Logger) *Normalizer {
	cfg.ApplyDefaults()
	return &Normalizer{cfg: cfg, tc: tc, log: log.WithComponent("audio")}
}

// Normalize decodes blob into a mono 16 kHz waveform. All failures are
// AUDIO_DECODE_ERROR app errors. The per-request work directory is removed
// on every return path.
func (n *Normalizer) Normalize(ctx context.Context, blob Blob) (*Waveform, error) {
	if blob.Empty() {
		return nil, apperrors.AudioDecode("empty audio payload", nil)
	}
	if n.cfg.MaxBytes > 0 && int64(len(blob.Data)) > n.cfg.MaxBytes {
		return nil, apperrors.AudioDecode(fmt.Sprintf("audio payload exceeds %d bytes", n.cfg.MaxBytes), nil)
	}

	dir, err := os.MkdirTemp(n.cfg.TempDir, "voicescreen-"+uuid.NewString()+"-")
	if err != nil {
		return nil, apperrors.AudioDecode("creating work directory", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			n.log.Warn("failed to remove work directory", logger.Fields("dir", dir, "error", rmErr.Error()))
		}
	}()

	inPath := filepath.Join(dir, blob.inputName())
	outPath := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(inPath, blob.Data, 0o600); err != nil {
		return nil, apperrors.AudioDecode("writing input", err)
	}

	if err := n.tc.Transcode(ctx, inPath, outPath, SampleRate, Channels); err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.AudioDecode("transcoding failed", err)
	}

	samples, err := n.decode(outPath)
	if err != nil {
		return nil, err
	}

	wf, err := NewWaveform(samples)
	if err != nil {
		return nil, apperrors.AudioDecode("audio too short", err)
	}
	n.log.WithContext(ctx).Debug("audio normalized", logger.Fields(
		logger.FieldSamples, wf.Len(),
		"bytes", len(blob.Data),
	))
	return wf, nil
}

func (n *Normalizer) decode(path string) ([]float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.AudioDecode("transcoder produced no output", err)
	}
	if info.Size() == 0 {
		return nil, apperrors.AudioDecode("transcoder produced empty output", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.AudioDecode("opening transcoder output", err)
	}
	defer f.Close()

	p, err := decodeWAV(f)
	if err != nil {
		return nil, apperrors.AudioDecode("decoding transcoder output", err)
	}

	samples := p.mono()
	if p.rate != SampleRate {
		n.log.Warn("transcoder output rate mismatch, resampling", logger.Fields("rate", p.rate))
		samples, err = resample(samples, p.rate, SampleRate)
		if err != nil {
			return nil, apperrors.AudioDecode("resampling", err)
		}
	}
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, apperrors.AudioDecode("non-finite samples in output", nil)
		}
	}
	return samples, nil
}
