package features

import (
	"errors"
	"math"
)

const (
	periodFloor     = 0.0001
	periodCeiling   = 0.02
	maxPeriodFactor = 1.3
	maxAmpFactor    = 1.6
)

type pulse struct {
	t   float64 // seconds
	amp float64
}

// trackPulses picks one waveform peak per glottal cycle, guided by the
// pitch contour. Each voiced run yields its own pulse train.
func trackPulses(x []float64, sr int, c contour) [][]pulse {
	var trains [][]pulse
	var cur []pulse
	flush := func() {
		if len(cur) > 0 {
			trains = append(trains, cur)
			cur = nil
		}
	}

	pos := 0
	prev := -1.0
	for pos < len(x) {
		f := c.at(pos)
		if f <= 0 {
			flush()
			prev = -1
			pos += c.hop
			continue
		}
		period := float64(sr) / f

		var lo, hi int
		if prev < 0 {
			lo, hi = pos, pos+int(math.Ceil(period))
		} else {
			lo = int(math.Floor(prev + 0.8*period))
			hi = int(math.Ceil(prev + 1.2*period))
		}
		if lo < 0 {
			lo = 0
		}
		if hi > len(x) {
			hi = len(x)
		}
		if hi-lo < 2 {
			break
		}

		peak := lo
		for i := lo + 1; i < hi; i++ {
			if x[i] > x[peak] {
				peak = i
			}
		}
		delta, amp := parabolic(x, peak)
		at := float64(peak) + delta

		cur = append(cur, pulse{t: at / float64(sr), amp: math.Abs(amp)})
		prev = at
		pos = peak + 1
		if next := int(prev + 0.8*period); next > pos {
			pos = next
		}
	}
	flush()
	return trains
}

func validPeriod(p float64) bool {
	return p >= periodFloor && p <= periodCeiling
}

func ratio(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}

// localJitter is the mean absolute difference of consecutive periods over
// the mean period.
func localJitter(trains [][]pulse) float64 {
	var diffSum, periodSum float64
	var diffs, periods int
	for _, tr := range trains {
		for i := 1; i < len(tr); i++ {
			p := tr[i].t - tr[i-1].t
			if !validPeriod(p) {
				continue
			}
			periodSum += p
			periods++
			if i+1 < len(tr) {
				q := tr[i+1].t - tr[i].t
				if validPeriod(q) && ratio(p, q) <= maxPeriodFactor {
					diffSum += math.Abs(p - q)
					diffs++
				}
			}
		}
	}
	if diffs == 0 || periods == 0 || periodSum == 0 {
		return 0
	}
	return (diffSum / float64(diffs)) / (periodSum / float64(periods))
}

// localShimmer is the mean absolute difference of consecutive pulse
// amplitudes over the mean amplitude.
func localShimmer(trains [][]pulse) float64 {
	var diffSum, ampSum float64
	var diffs, amps int
	for _, tr := range trains {
		for i := 1; i < len(tr); i++ {
			p := tr[i].t - tr[i-1].t
			if !validPeriod(p) {
				continue
			}
			a, b := tr[i-1].amp, tr[i].amp
			if ratio(a, b) > maxAmpFactor {
				continue
			}
			diffSum += math.Abs(a - b)
			diffs++
			ampSum += a
			amps++
		}
	}
	if diffs == 0 || amps == 0 || ampSum == 0 {
		return 0
	}
	return (diffSum / float64(diffs)) / (ampSum / float64(amps))
}

var errNoPulses = errors.New("fewer than 3 glottal pulses")

// perturbation returns local jitter and shimmer. An unvoiced signal is not
// an error; too few pulses in a voiced one is.
func perturbation(x []float64, sr int, c contour) (jitter, shimmer float64, err error) {
	if len(c.voiced()) == 0 {
		return 0, 0, nil
	}
	trains := trackPulses(x, sr, c)
	n := 0
	for _, tr := range trains {
		n += len(tr)
	}
	if n < 3 {
		return 0, 0, errNoPulses
	}
	return localJitter(trains), localShimmer(trains), nil
}
