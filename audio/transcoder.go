package audio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/logger"
	"github.com/kbukum/voicescreen/observability"
	"github.com/kbukum/voicescreen/process"
	"github.com/kbukum/voicescreen/provider"
	"github.com/kbukum/voicescreen/resilience"
)

// Transcoder converts an input media file into a 16-bit PCM WAV file at the
// given sample rate and channel count.
type Transcoder interface {
	Transcode(ctx context.Context, inPath, outPath string, sampleRate, channels int) error
	// Available reports whether the transcoder can currently run.
	Available(ctx context.Context) bool
}

// FFmpeg runs the ffmpeg binary through a resilient process runner.
type FFmpeg struct {
	cfg    TranscoderConfig
	runner *process.Runner
	log    *logger.Logger
}

// NewFFmpeg builds an ffmpeg transcoder. metrics may be nil.
func NewFFmpeg(cfg TranscoderConfig, log *logger.Logger, metrics *observability.Metrics) (*FFmpeg, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("transcoder config: %w", err)
	}
	log = log.WithComponent("transcoder")

	adapter := process.NewAdapter(process.Config{
		Name:        "ffmpeg",
		Binary:      cfg.Binary,
		GracePeriod: cfg.GracePeriod,
		Timeout:     cfg.Timeout,
	})
	resCfg := provider.ResilienceConfig{
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			Name:             "ffmpeg",
			MaxFailures:      cfg.BreakerFailures,
			Timeout:          cfg.BreakerCooldown,
			HalfOpenMaxCalls: 1,
			IsFailure:        process.IsInfrastructure,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("transcoder circuit changed", logger.Fields("from", from.String(), "to", to.String()))
			},
		},
		Bulkhead: &resilience.BulkheadConfig{
			Name:          "ffmpeg",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxWait,
			OnReject: func(string) {
				log.Warn("transcoder bulkhead rejected request")
			},
		},
	}
	runner := process.NewRunner(adapter, resCfg,
		provider.WithTracing[process.Command, *process.Result]("voicescreen"),
		provider.WithMetrics[process.Command, *process.Result](metrics),
		provider.WithLogging[process.Command, *process.Result](log),
	)

	return &FFmpeg{cfg: cfg, runner: runner, log: log}, nil
}

// Args returns the ffmpeg argv (without the binary) for one conversion.
func Args(inPath, outPath string, sampleRate, channels int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", inPath,
		"-ar", fmt.Sprint(sampleRate),
		"-ac", fmt.Sprint(channels),
		"-c:a", "pcm_s16le",
		outPath,
	}
}

// Transcode runs one conversion. Every failure is reported as an audio
// decode error; the cause distinguishes rejected input from an unavailable
// transcoder.
func (f *FFmpeg) Transcode(ctx context.Context, inPath, outPath string, sampleRate, channels int) error {
	cmd := process.Command{
		Binary:    f.cfg.Binary,
		Args:      Args(inPath, outPath, sampleRate, channels),
		MaxOutput: 16 << 10,
	}
	if filepath.IsAbs(outPath) {
		cmd.Dir = filepath.Dir(outPath)
	}
	_, err := f.runner.Run(ctx, cmd)
	if err == nil {
		return nil
	}

	var exitErr *process.ExitError
	switch {
	case errors.As(err, &exitErr):
		return apperrors.AudioDecode("transcoder rejected input", err)
	case errors.Is(err, process.ErrKilled):
		return apperrors.AudioDecode("transcoder timed out", err)
	case errors.Is(err, process.ErrBinaryNotFound):
		return apperrors.AudioDecode("transcoder not installed", err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.AudioDecode("transcoder unavailable", err)
	default:
		return apperrors.AudioDecode("transcoder failed", err)
	}
}

// Available is false while the binary is missing or the circuit is open.
func (f *FFmpeg) Available(ctx context.Context) bool {
	return f.runner.IsAvailable(ctx)
}

// Circuit returns the breaker state name.
func (f *FFmpeg) Circuit() string { return f.runner.Circuit() }

// Binary returns the configured executable.
func (f *FFmpeg) Binary() string { return f.cfg.Binary }
