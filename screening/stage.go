package screening

import "fmt"

// Stage is a step in a screening.
type Stage string

const (
	StageReceived         Stage = "received"
	StageNormalized       Stage = "normalized"
	StageFeatureExtracted Stage = "feature_extracted"
	StageClassified       Stage = "classified"
	StageDone             Stage = "done"
)

// StageError reports the stage a screening failed in and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("screening failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
