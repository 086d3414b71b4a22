package screening

import (
	"context"

	"github.com/kbukum/voicescreen/audio"
	"github.com/kbukum/voicescreen/pipeline"
)

// Item is one recording in a batch.
type Item struct {
	Name string
	Blob audio.Blob
}

// Outcome pairs a batch item with its result or error.
type Outcome struct {
	Name   string
	Result Result
	Err    error
}

// Batch screens items with at most Config.BatchWorkers in flight. Outcomes
// are in input order; a failed item does not stop the others.
func (o *Orchestrator) Batch(ctx context.Context, items []Item) ([]Outcome, error) {
	p := pipeline.Parallel(pipeline.FromSlice(items), o.cfg.BatchWorkers,
		func(ctx context.Context, it Item) (Outcome, error) {
			res, err := o.Run(ctx, it.Blob)
			return Outcome{Name: it.Name, Result: res, Err: err}, nil
		})
	return pipeline.Collect(ctx, p)
}
