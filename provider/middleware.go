package provider

import "context"

// Middleware wraps a RequestResponse provider with cross-cutting behavior.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares; the first one is outermost.
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// Hook observes one Execute call. It must call next exactly once and
// return its error.
type Hook func(ctx context.Context, provider string, next func(context.Context) error) error

// Around turns a Hook into a Middleware. Name and IsAvailable pass through.
func Around[I, O any](hook Hook) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &hooked[I, O]{RequestResponse: inner, hook: hook}
	}
}

type hooked[I, O any] struct {
	RequestResponse[I, O]
	hook Hook
}

func (h *hooked[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var out O
	err := h.hook(ctx, h.Name(), func(ctx context.Context) error {
		var err error
		out, err = h.RequestResponse.Execute(ctx, input)
		return err
	})
	return out, err
}
