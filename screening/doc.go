// Package screening runs the voice screening pipeline: normalize the
// uploaded audio, extract the feature vector, classify it.
//
// Only audio decoding can fail a screening. Degraded features resolve to
// defaults and an unavailable classifier resolves to an Unknown label, so
// Run returns an error only as a *StageError from the Received stage.
package screening
