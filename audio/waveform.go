package audio

import (
	"fmt"
	"time"
)

const (
	// SampleRate is the canonical sample rate in Hz.
	SampleRate = 16000
	// Channels is the canonical channel count.
	Channels = 1
	// MinSamples is the shortest accepted waveform (0.2 s at SampleRate).
	MinSamples = 3200
)

// Waveform is an immutable mono signal at SampleRate.
type Waveform struct {
	samples []float64
}

// NewWaveform copies samples into a Waveform, enforcing the minimum length.
func NewWaveform(samples []float64) (*Waveform, error) {
	if len(samples) < MinSamples {
		return nil, fmt.Errorf("waveform too short: %d samples, need %d", len(samples), MinSamples)
	}
	cp := make([]float64, len(samples))
	copy(cp, samples)
	return &Waveform{samples: cp}, nil
}

// Samples returns a copy of the signal.
func (w *Waveform) Samples() []float64 {
	cp := make([]float64, len(w.samples))
	copy(cp, w.samples)
	return cp
}

// Len returns the number of samples.
func (w *Waveform) Len() int { return len(w.samples) }

// SampleRate is always the package SampleRate.
func (w *Waveform) SampleRate() int { return SampleRate }

// Duration returns the signal length in time.
func (w *Waveform) Duration() time.Duration {
	return time.Duration(len(w.samples)) * time.Second / SampleRate
}
