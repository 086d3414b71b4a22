package provider

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/voicescreen/errors"
	"github.com/kbukum/voicescreen/resilience"
)

// ResilienceConfig bundles optional policies for a provider. Nil fields
// are skipped.
type ResilienceConfig struct {
	CircuitBreaker *resilience.CircuitBreakerConfig
	Bulkhead       *resilience.BulkheadConfig
}

// Guard holds the live breaker and bulkhead for one collaborator so that
// their state survives across calls.
type Guard struct {
	cb *resilience.CircuitBreaker
	bh *resilience.Bulkhead
}

// NewGuard builds the configured policies, or returns nil when none are.
func NewGuard(cfg ResilienceConfig) *Guard {
	if cfg.CircuitBreaker == nil && cfg.Bulkhead == nil {
		return nil
	}
	g := &Guard{}
	if cfg.CircuitBreaker != nil {
		g.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	if cfg.Bulkhead != nil {
		g.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return g
}

// Circuit reports the breaker state, closed when there is no breaker.
func (g *Guard) Circuit() resilience.State {
	if g == nil || g.cb == nil {
		return resilience.StateClosed
	}
	return g.cb.State()
}

// Guarded runs fn inside the bulkhead and then the breaker. Rejections by
// either become SERVICE_UNAVAILABLE or TIMEOUT AppErrors; errors from fn
// are returned untouched.
func Guarded[T any](ctx context.Context, g *Guard, fn func() (T, error)) (T, error) {
	var zero T
	if g == nil {
		return fn()
	}
	if g.bh != nil {
		release, err := g.bh.Acquire(ctx)
		if err != nil {
			return zero, rejection(err)
		}
		defer release()
	}
	if g.cb == nil {
		return fn()
	}
	done, err := g.cb.Allow()
	if err != nil {
		return zero, rejection(err)
	}
	out, err := fn()
	done(err)
	return out, err
}

func rejection(err error) error {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.ServiceUnavailable("transcoder").WithCause(err)
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return apperrors.ServiceUnavailable("transcoder").
			WithCause(err).
			WithDetail("reason", "concurrency limit reached")
	default:
		return apperrors.Timeout("waiting for transcoder").WithCause(err)
	}
}

// WithResilience wraps p with the configured policies. An empty config
// returns p unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	g := NewGuard(cfg)
	if g == nil {
		return p
	}
	return &Func[I, O]{
		ProviderName: p.Name(),
		Available: func(ctx context.Context) bool {
			return g.Circuit() != resilience.StateOpen && p.IsAvailable(ctx)
		},
		Fn: func(ctx context.Context, in I) (O, error) {
			return Guarded(ctx, g, func() (O, error) { return p.Execute(ctx, in) })
		},
	}
}
