package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	pitchFrame = 1024
	pitchHop   = 256
)

// contour is a per-frame F0 track; unvoiced frames hold 0.
type contour struct {
	f0  []float64
	hop int
}

// voiced returns the non-zero F0 values in frame order.
func (c contour) voiced() []float64 {
	out := make([]float64, 0, len(c.f0))
	for _, f := range c.f0 {
		if f > 0 {
			out = append(out, f)
		}
	}
	return out
}

// at returns the F0 of the frame covering sample i, 0 if unvoiced.
func (c contour) at(i int) float64 {
	if len(c.f0) == 0 || i < 0 {
		return 0
	}
	k := (i - pitchFrame/2 + c.hop/2) / c.hop
	if k < 0 {
		k = 0
	}
	if k >= len(c.f0) {
		k = len(c.f0) - 1
	}
	return c.f0[k]
}

// trackPitch runs YIN over overlapping frames. Frames whose peak is below
// the voicing floor, taken relative to the recording's peak, are unvoiced.
func trackPitch(x []float64, sr int, cfg Config) contour {
	minLag := int(math.Floor(float64(sr) / cfg.PitchCeiling))
	maxLag := int(math.Ceil(float64(sr) / cfg.PitchFloor))
	if minLag < 2 {
		minLag = 2
	}
	if maxLag > pitchFrame/2 {
		maxLag = pitchFrame / 2
	}

	c := contour{hop: pitchHop}
	if len(x) < pitchFrame {
		return c
	}
	gate := cfg.voicingFloor() * maxAbs(x)
	diff := make([]float64, maxLag+1)
	cmndf := make([]float64, maxLag+1)
	for start := 0; start+pitchFrame <= len(x); start += pitchHop {
		frame := x[start : start+pitchFrame]
		if maxAbs(frame) < gate {
			c.f0 = append(c.f0, 0)
			continue
		}
		c.f0 = append(c.f0, yinFrame(frame, sr, minLag, maxLag, cfg, diff, cmndf))
	}
	return c
}

func yinFrame(frame []float64, sr, minLag, maxLag int, cfg Config, diff, cmndf []float64) float64 {

	w := len(frame) - maxLag
	for tau := 1; tau <= maxLag; tau++ {
		var s float64
		for j := 0; j < w; j++ {
			d := frame[j] - frame[j+tau]
			s += d * d
		}
		diff[tau] = s
	}

	cmndf[0] = 1
	var running float64
	for tau := 1; tau <= maxLag; tau++ {
		running += diff[tau]
		if running == 0 {
			cmndf[tau] = 1
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / running
	}

	tau := -1
	for t := minLag; t <= maxLag; t++ {
		if cmndf[t] < cfg.YINThreshold {
			for t+1 <= maxLag && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return 0
	}

	better := float64(tau)
	if tau > 1 && tau < maxLag {
		s0, s1, s2 := cmndf[tau-1], cmndf[tau], cmndf[tau+1]
		if den := 2 * (2*s1 - s2 - s0); den != 0 {
			better += (s2 - s0) / den
		}
	}
	if better <= 0 {
		return 0
	}
	f0 := float64(sr) / better
	if f0 < cfg.PitchFloor || f0 > cfg.PitchCeiling {
		return 0
	}
	return f0
}

// pitchStats holds the F0-derived features.
type pitchStats struct {
	fo, fhi, flo              float64
	spread1, spread2, d2, ppe float64
}

func computePitchStats(voiced []float64) pitchStats {
	var ps pitchStats
	if len(voiced) == 0 {
		return ps
	}
	ps.fo = stat.Mean(voiced, nil)
	ps.fhi = floats.Max(voiced)
	ps.flo = floats.Min(voiced)
	if len(voiced) < 2 {
		return ps
	}

	ps.d2 = stat.PopVariance(voiced, nil)
	ps.spread1 = math.Sqrt(ps.d2)
	// Signed mean of the frame-to-frame deltas telescopes to the end points.
	ps.spread2 = (voiced[len(voiced)-1] - voiced[0]) / float64(len(voiced)-1)

	logs := make([]float64, len(voiced))
	for i, f := range voiced {
		logs[i] = math.Log(f + 1e-6)
	}
	ps.ppe = math.Sqrt(stat.PopVariance(logs, nil))
	return ps
}
