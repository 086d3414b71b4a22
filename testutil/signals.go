package testutil

import (
	"math"
	"math/rand/v2"
)

// Sine returns a sine tone of the given frequency, duration and amplitude.
func Sine(freq, seconds float64, sampleRate int, amp float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// Chirp returns a linear frequency sweep from f0 to f1 Hz.
func Chirp(f0, f1, seconds float64, sampleRate int, amp float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	k := (f1 - f0) / seconds
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = amp * math.Sin(2*math.Pi*(f0*t+0.5*k*t*t))
	}
	return out
}

// Silence returns n zero samples.
func Silence(n int) []float64 {
	return make([]float64, n)
}

// Noise returns seeded uniform noise in [-amp, amp].
func Noise(n int, amp float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * (2*rng.Float64() - 1)
	}
	return out
}

// Voice returns a sum of decaying harmonics of f0, normalized to amp peak.
// It is closer to voiced speech than a pure sine.
func Voice(f0, seconds float64, sampleRate int, amp float64) []float64 {
	n := int(seconds * float64(sampleRate))
	out := make([]float64, n)
	for h := 1; h <= 8; h++ {
		hf := f0 * float64(h)
		if hf >= float64(sampleRate)/2 {
			break
		}
		a := amp / float64(h)
		for i := range out {
			out[i] += a * math.Sin(2*math.Pi*hf*float64(i)/float64(sampleRate))
		}
	}
	peak := 0.0
	for _, v := range out {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak > 0 {
		for i := range out {
			out[i] *= amp / peak
		}
	}
	return out
}
