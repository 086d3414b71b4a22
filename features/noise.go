package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	hnrPeriods        = 4.5
	hnrStep           = 0.01
	hnrSilence        = 0.1
	hnrMaxCorrelation = 0.999999
)

// autocorrelator computes normalized autocorrelations of fixed-length
// frames by FFT.
type autocorrelator struct {
	n      int
	fft    *fourier.FFT
	padded []float64
	coeffs []complex128
	seq    []float64
}

func newAutocorrelator(frameLen int) *autocorrelator {
	n := 1
	for n < 2*frameLen {
		n <<= 1
	}
	return &autocorrelator{
		n:      n,
		fft:    fourier.NewFFT(n),
		padded: make([]float64, n),
		seq:    make([]float64, n),
	}
}

// normalized returns r(τ)/r(0) for τ in [0, len(x)). The result aliases
// internal storage until the next call.
func (a *autocorrelator) normalized(x []float64) []float64 {
	copy(a.padded, x)
	for i := len(x); i < a.n; i++ {
		a.padded[i] = 0
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.padded)
	for i, c := range a.coeffs {
		re, im := real(c), imag(c)
		a.coeffs[i] = complex(re*re+im*im, 0)
	}
	a.seq = a.fft.Sequence(a.seq, a.coeffs)
	r0 := a.seq[0]
	out := a.seq[:len(x)]
	if r0 == 0 {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	for i := range out {
		out[i] /= r0
	}
	return out
}

// harmonicsToNoise estimates mean HNR in dB over voiced frames, using the
// Hanning-window autocorrelation correction r_x(τ) = r_xw(τ) / r_w(τ).
func harmonicsToNoise(x []float64, sr int, cfg Config) float64 {
	winLen := int(math.Round(hnrPeriods / cfg.PitchFloor * float64(sr)))
	step := int(math.Round(hnrStep * float64(sr)))
	if winLen < 4 || len(x) < winLen {
		return 0
	}
	minLag := int(math.Floor(float64(sr) / cfg.PitchCeiling))
	maxLag := int(math.Ceil(float64(sr) / cfg.PitchFloor))
	if maxLag >= winLen/2 {
		maxLag = winLen/2 - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	global := maxAbs(x)
	if global == 0 {
		return 0
	}

	window := make([]float64, winLen)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(winLen-1))
	}
	ac := newAutocorrelator(winLen)
	rw := make([]float64, winLen)
	copy(rw, ac.normalized(window))

	frame := make([]float64, winLen)
	var sum float64
	var count int
	for start := 0; start+winLen <= len(x); start += step {
		seg := x[start : start+winLen]
		if maxAbs(seg) < hnrSilence*global {
			continue
		}
		var mean float64
		for _, v := range seg {
			mean += v
		}
		mean /= float64(winLen)
		for i, v := range seg {
			frame[i] = (v - mean) * window[i]
		}

		rxw := ac.normalized(frame)
		best := 0.0
		for lag := minLag; lag <= maxLag; lag++ {
			if rw[lag] <= 0 {
				continue
			}
			if r := rxw[lag] / rw[lag]; r > best {
				best = r
			}
		}
		if best <= 0 {
			continue
		}
		if best > hnrMaxCorrelation {
			best = hnrMaxCorrelation
		}
		sum += 10 * math.Log10(best/(1-best))
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// noiseToHarmonics derives NHR from HNR.
func noiseToHarmonics(hnr float64) float64 {
	if hnr > 0 {
		return 1 / (hnr + 1e-6)
	}
	return 0
}
