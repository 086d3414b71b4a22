package pipeline

import "context"

// Iterator yields values on demand. Next returns ok=false once exhausted.
type Iterator[T any] interface {
	Next(ctx context.Context) (val T, ok bool, err error)
	Close() error
}

// Pipeline is a lazy source of values; nothing runs until it is collected.
type Pipeline[T any] struct {
	open func(ctx context.Context) Iterator[T]
}

// FromSlice yields items in order.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{open: func(context.Context) Iterator[T] {
		return &sliceIter[T]{rest: items}
	}}
}

// Collect drains the pipeline. On error it returns the values gathered so
// far together with the error.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	it := p.open(ctx)
	defer it.Close()

	var out []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return out, err
		}
		out = append(out, val)
	}
}

type sliceIter[T any] struct{ rest []T }

func (it *sliceIter[T]) Next(context.Context) (T, bool, error) {
	var zero T
	if len(it.rest) == 0 {
		return zero, false, nil
	}
	val := it.rest[0]
	it.rest = it.rest[1:]
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }
