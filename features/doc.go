// Package features computes the 22-value acoustic biomarker vector from a
// canonical waveform.
//
// Each sub-extractor (pitch, perturbation, noise, complexity, spectral) runs
// isolated: an error or panic resolves that sub-vector to zeros and is
// reported as a degradation, never returned. The vector length is constant.
//
// Order:
//
//	fo fhi flo jitter shimmer nhr hnr dfa spread1 spread2 d2 ppe mfcc1..mfcc10
package features
