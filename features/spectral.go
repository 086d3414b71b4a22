package features

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

const (
	mfccNFFT  = 2048
	mfccHop   = 512
	mfccMels  = 128
	mfccAmin  = 1e-10
	mfccTopDB = 80.0
)

// melBank is a Slaney-style mel filterbank with area normalization.
type melBank struct {
	weights *mat.Dense // mels × bins
}

func hzToMel(hz float64) float64 {
	const fsp = 200.0 / 3
	const minLogHz = 1000.0
	minLogMel := minLogHz / fsp
	logStep := math.Log(6.4) / 27
	if hz >= minLogHz {
		return minLogMel + math.Log(hz/minLogHz)/logStep
	}
	return hz / fsp
}

func melToHz(mel float64) float64 {
	const fsp = 200.0 / 3
	const minLogHz = 1000.0
	minLogMel := minLogHz / fsp
	logStep := math.Log(6.4) / 27
	if mel >= minLogMel {
		return minLogHz * math.Exp(logStep*(mel-minLogMel))
	}
	return fsp * mel
}

func newMelBank(sr, nfft, nMels int) *melBank {
	bins := nfft/2 + 1
	fftFreqs := make([]float64, bins)
	for i := range fftFreqs {
		fftFreqs[i] = float64(i) * float64(sr) / float64(nfft)
	}

	lo, hi := hzToMel(0), hzToMel(float64(sr)/2)
	melF := make([]float64, nMels+2)
	for i := range melF {
		melF[i] = melToHz(lo + (hi-lo)*float64(i)/float64(nMels+1))
	}

	w := mat.NewDense(nMels, bins, nil)
	for m := 0; m < nMels; m++ {
		left, center, right := melF[m], melF[m+1], melF[m+2]
		enorm := 2 / (right - left)
		for b, f := range fftFreqs {
			lower := (f - left) / (center - left)
			upper := (right - f) / (right - center)
			v := math.Max(0, math.Min(lower, upper))
			if v > 0 {
				w.Set(m, b, v*enorm)
			}
		}
	}
	return &melBank{weights: w}
}

// dctBasis returns the first k rows of the orthonormal DCT-II matrix of size n.
func dctBasis(k, n int) *mat.Dense {
	d := mat.NewDense(k, n, nil)
	for i := 0; i < k; i++ {
		scale := math.Sqrt(2 / float64(n))
		if i == 0 {
			scale = math.Sqrt(1 / float64(n))
		}
		for j := 0; j < n; j++ {
			d.Set(i, j, scale*math.Cos(math.Pi*float64(i)*(2*float64(j)+1)/(2*float64(n))))
		}
	}
	return d
}

// mfccExtractor holds the precomputed transforms for one sample rate.
type mfccExtractor struct {
	sr     int
	window []float64
	fft    *fourier.FFT
	mel    *melBank
	dct    *mat.Dense
}

func newMFCCExtractor(sr int) *mfccExtractor {
	window := make([]float64, mfccNFFT)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/mfccNFFT)
	}
	return &mfccExtractor{
		sr:     sr,
		window: window,
		fft:    fourier.NewFFT(mfccNFFT),
		mel:    newMelBank(sr, mfccNFFT, mfccMels),
		dct:    dctBasis(MFCCCount, mfccMels),
	}
}

// powerSpectrogram returns |STFT|² as bins × frames, with centered frames
// and zero padding.
func (e *mfccExtractor) powerSpectrogram(x []float64) *mat.Dense {
	pad := mfccNFFT / 2
	padded := make([]float64, len(x)+2*pad)
	copy(padded[pad:], x)

	frames := 1 + (len(padded)-mfccNFFT)/mfccHop
	bins := mfccNFFT/2 + 1
	spec := mat.NewDense(bins, frames, nil)

	buf := make([]float64, mfccNFFT)
	var coeffs []complex128
	for f := 0; f < frames; f++ {
		start := f * mfccHop
		for i := range buf {
			buf[i] = padded[start+i] * e.window[i]
		}
		coeffs = e.fft.Coefficients(coeffs, buf)
		for b, c := range coeffs {
			re, im := real(c), imag(c)
			spec.Set(b, f, re*re+im*im)
		}
	}
	return spec
}

// mfcc returns the frame-averaged first MFCCCount coefficients.
func (e *mfccExtractor) mfcc(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, errors.New("empty signal")
	}
	spec := e.powerSpectrogram(x)
	_, frames := spec.Dims()

	var melSpec mat.Dense
	melSpec.Mul(e.mel.weights, spec)

	// power to dB, floored at top_db below the global max
	top := math.Inf(-1)
	melSpec.Apply(func(_, _ int, v float64) float64 {
		db := 10 * math.Log10(math.Max(mfccAmin, v))
		if db > top {
			top = db
		}
		return db
	}, &melSpec)
	floor := top - mfccTopDB
	melSpec.Apply(func(_, _ int, v float64) float64 {
		return math.Max(v, floor)
	}, &melSpec)

	var cep mat.Dense
	cep.Mul(e.dct, &melSpec)

	out := make([]float64, MFCCCount)
	for k := 0; k < MFCCCount; k++ {
		var s float64
		for _, v := range cep.RawRowView(k) {
			s += v
		}
		out[k] = s / float64(frames)
	}
	return out, nil
}
