package features

import "fmt"

// Size is the number of values in a Vector.
const Size = 22

// MFCCCount is the number of cepstral coefficients in a Vector.
const MFCCCount = 10

// Vector positions.
const (
	IdxFo = iota
	IdxFhi
	IdxFlo
	IdxJitter
	IdxShimmer
	IdxNHR
	IdxHNR
	IdxDFA
	IdxSpread1
	IdxSpread2
	IdxD2
	IdxPPE
	IdxMFCC1
)

var names = func() []string {
	n := []string{"fo", "fhi", "flo", "jitter", "shimmer", "nhr", "hnr", "dfa", "spread1", "spread2", "d2", "ppe"}
	for i := 1; i <= MFCCCount; i++ {
		n = append(n, fmt.Sprintf("mfcc%d", i))
	}
	return n
}()

// Names returns the feature names in vector order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Vector is the fixed-order feature vector.
type Vector [Size]float64

// Slice returns the values as a new slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Named returns the values keyed by feature name.
func (v Vector) Named() map[string]float64 {
	out := make(map[string]float64, Size)
	for i, n := range names {
		out[n] = v[i]
	}
	return out
}
