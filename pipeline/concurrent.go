package pipeline

import "context"

type result[O any] struct {
	val O
	err error
}

type job[I, O any] struct {
	val  I
	done chan result[O]
}

// Parallel applies fn with up to n workers and yields results in source
// order. The first error stops the pipeline and cancels outstanding work.
func Parallel[I, O any](p *Pipeline[I], n int, fn func(context.Context, I) (O, error)) *Pipeline[O] {
	n = max(n, 1)
	return &Pipeline[O]{open: func(parent context.Context) Iterator[O] {
		ctx, cancel := context.WithCancel(parent)
		src := p.open(ctx)
		jobs := make(chan job[I, O])
		// one slot per value in source order, each filled by whichever
		// worker picks the job up
		order := make(chan chan result[O], n)

		go func() {
			defer close(order)
			defer close(jobs)
			for {
				val, ok, err := src.Next(ctx)
				if !ok && err == nil {
					return
				}
				done := make(chan result[O], 1)
				if err != nil {
					done <- result[O]{err: err}
				}
				select {
				case order <- done:
				case <-ctx.Done():
					return
				}
				if err != nil {
					return
				}
				select {
				case jobs <- job[I, O]{val: val, done: done}:
				case <-ctx.Done():
					return
				}
			}
		}()

		for range n {
			go func() {
				for j := range jobs {
					val, err := fn(ctx, j.val)
					j.done <- result[O]{val: val, err: err}
				}
			}()
		}

		return &orderedIter[O]{order: order, cancel: cancel, src: src}
	}}
}

type orderedIter[O any] struct {
	order  <-chan chan result[O]
	cancel context.CancelFunc
	src    interface{ Close() error }
}

func (it *orderedIter[O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	var done chan result[O]
	select {
	case d, ok := <-it.order:
		if !ok {
			return zero, false, nil
		}
		done = d
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}

	select {
	case r := <-done:
		if r.err != nil {
			it.cancel()
			return zero, false, r.err
		}
		return r.val, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (it *orderedIter[O]) Close() error {
	it.cancel()
	return it.src.Close()
}
