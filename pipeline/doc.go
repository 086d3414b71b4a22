// Package pipeline runs batch work lazily through a bounded worker pool.
//
//	results := pipeline.Parallel(pipeline.FromSlice(items), 4, screenOne)
//	out, err := pipeline.Collect(ctx, results)
//
// Results keep source order regardless of which worker finishes first.
package pipeline
