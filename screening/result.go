package screening

import (
	"math"
	"time"

	"github.com/kbukum/voicescreen/classifier"
	"github.com/kbukum/voicescreen/features"
)

// Result is the outcome of one screening.
type Result struct {
	Classification classifier.Result
	Features       features.Vector
	// Degraded names the sub-extractors that fell back to defaults.
	Degraded []string
	Digest   string
	// Cached is set when the features came from the cache.
	Cached   bool
	Duration time.Duration
}

// Response is the public result shape.
type Response struct {
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
}

// NewResponse rounds the probability to two decimals.
func NewResponse(r Result) Response {
	return Response{
		Prediction:  string(r.Classification.Label),
		Probability: math.Round(r.Classification.Probability*100) / 100,
	}
}
