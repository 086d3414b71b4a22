package features

import "math"

func maxAbs(x []float64) float64 {
	var m float64
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if !finite(v) {
			return false
		}
	}
	return true
}

// parabolic refines a peak at index i from its neighbours, returning the
// fractional offset in [-0.5, 0.5] and the interpolated value.
func parabolic(x []float64, i int) (float64, float64) {
	if i <= 0 || i >= len(x)-1 {
		return 0, x[i]
	}
	y0, y1, y2 := x[i-1], x[i], x[i+1]
	den := y0 - 2*y1 + y2
	if den == 0 {
		return 0, y1
	}
	delta := 0.5 * (y0 - y2) / den
	if delta > 0.5 || delta < -0.5 {
		return 0, y1
	}
	return delta, y1 - 0.25*(y0-y2)*delta
}
