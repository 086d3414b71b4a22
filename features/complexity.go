package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// logarithmicN returns unique integer box sizes min·factor^i up to max.
func logarithmicN(minN, maxN, factor float64) []int {
	if minN <= 0 || maxN < minN || factor <= 1 {
		return nil
	}
	maxI := int(math.Floor(math.Log(maxN/minN) / math.Log(factor)))
	var ns []int
	for i := 0; i <= maxI; i++ {
		n := int(math.Floor(minN * math.Pow(factor, float64(i))))
		if len(ns) == 0 || ns[len(ns)-1] != n {
			ns = append(ns, n)
		}
	}
	return ns
}

// dfa returns the detrended fluctuation analysis exponent of x. Short
// inputs return 0.
func dfa(x []float64, cfg Config) float64 {
	clean := make([]float64, 0, len(x))
	for _, v := range x {
		if finite(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) <= cfg.DFAMinSamples {
		return 0
	}
	if len(clean) > cfg.DFAMaxSamples {
		clean = clean[:cfg.DFAMaxSamples]
	}

	mean := stat.Mean(clean, nil)
	walk := make([]float64, len(clean))
	var acc float64
	for i, v := range clean {
		acc += v - mean
		walk[i] = acc
	}

	var logN, logF []float64
	for _, n := range logarithmicN(4, 0.1*float64(len(walk)), 1.2) {
		if f := fluctuation(walk, n); f > 0 && finite(f) {
			logN = append(logN, math.Log(float64(n)))
			logF = append(logF, math.Log(f))
		}
	}
	if len(logN) < 2 {
		return 0
	}
	_, slope := stat.LinearRegression(logN, logF, nil, false)
	if !finite(slope) {
		return 0
	}
	return slope
}

// fluctuation is the mean RMS residual of linearly detrended windows of
// size n with 50 % overlap.
func fluctuation(walk []float64, n int) float64 {
	step := n / 2
	if n < 2 || step < 1 {
		return 0
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	var sum float64
	var windows int
	for start := 0; start < len(walk)-n; start += step {
		w := walk[start : start+n]
		alpha, beta := stat.LinearRegression(xs, w, nil, false)
		var ss float64
		for i, v := range w {
			r := v - (alpha + beta*xs[i])
			ss += r * r
		}
		sum += math.Sqrt(ss / float64(n))
		windows++
	}
	if windows == 0 {
		return 0
	}
	return sum / float64(windows)
}
