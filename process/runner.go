package process

import (
	"context"

	"github.com/kbukum/voicescreen/provider"
	"github.com/kbukum/voicescreen/resilience"
)

// Runner executes commands through a provider chain whose resilience state
// persists across calls, so repeated infrastructure failures trip the breaker.
type Runner struct {
	rr    provider.RequestResponse[Command, *Result]
	guard *provider.Guard
}

// NewRunner wraps adapter with the given resilience policies and optional
// outer middlewares (logging, metrics, tracing).
func NewRunner(adapter *Adapter, cfg provider.ResilienceConfig, mws ...provider.Middleware[Command, *Result]) *Runner {
	guard := provider.NewGuard(cfg)
	inner := &provider.Func[Command, *Result]{
		ProviderName: adapter.Name(),
		Available: func(ctx context.Context) bool {
			return guard.Circuit() != resilience.StateOpen && adapter.IsAvailable(ctx)
		},
		Fn: func(ctx context.Context, cmd Command) (*Result, error) {
			return provider.Guarded(ctx, guard, func() (*Result, error) {
				return adapter.Execute(ctx, cmd)
			})
		},
	}
	return &Runner{rr: provider.Chain(mws...)(inner), guard: guard}
}

// Run executes cmd through the chain.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	return r.rr.Execute(ctx, cmd)
}

// Name returns the wrapped adapter's name.
func (r *Runner) Name() string { return r.rr.Name() }

// IsAvailable is false while the binary is missing or the breaker is open.
func (r *Runner) IsAvailable(ctx context.Context) bool { return r.rr.IsAvailable(ctx) }

// Circuit reports the breaker state as a string, "closed" when none is configured.
func (r *Runner) Circuit() string { return r.guard.Circuit().String() }
