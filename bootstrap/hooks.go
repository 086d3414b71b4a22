package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

type phase int

const (
	phaseStart phase = iota // after components start
	phaseReady              // after the ready check
	phaseStop               // before components stop
	phaseCount
)

var phaseNames = [phaseCount]string{"onStart", "onReady", "onStop"}

// OnStart registers hooks that run after components start.
func (a *App[C]) OnStart(hooks ...Hook) { a.hooks[phaseStart] = append(a.hooks[phaseStart], hooks...) }

// OnReady registers hooks that run after the ready check.
func (a *App[C]) OnReady(hooks ...Hook) { a.hooks[phaseReady] = append(a.hooks[phaseReady], hooks...) }

// OnStop registers hooks that run before components stop. All of them run
// even when one fails.
func (a *App[C]) OnStop(hooks ...Hook) { a.hooks[phaseStop] = append(a.hooks[phaseStop], hooks...) }

// fire runs the hooks of p in registration order and stops at the first error.
func (a *App[C]) fire(ctx context.Context, p phase) error {
	for i, h := range a.hooks[p] {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", phaseNames[p], i, err)
		}
	}
	return nil
}
