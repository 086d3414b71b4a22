package resilience

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	Name string
	// MaxConcurrent is the number of slots. Zero means 4.
	MaxConcurrent int
	// MaxWait bounds the wait for a free slot. Zero rejects immediately.
	MaxWait  time.Duration
	OnReject func(name string)
}

// Bulkhead caps how many calls run at once.
type Bulkhead struct {
	cfg   BulkheadConfig
	slots chan struct{}
}

func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Bulkhead{cfg: cfg, slots: make(chan struct{}, cfg.MaxConcurrent)}
}

// Acquire takes a slot, waiting up to MaxWait. The returned release must be
// called once the work is finished.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	if err := b.take(ctx); err != nil {
		if b.cfg.OnReject != nil {
			b.cfg.OnReject(b.cfg.Name)
		}
		return nil, err
	}
	return func() { <-b.slots }, nil
}

func (b *Bulkhead) take(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
		if b.cfg.MaxWait <= 0 {
			return ErrBulkheadFull
		}
	}

	wait := time.NewTimer(b.cfg.MaxWait)
	defer wait.Stop()
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-wait.C:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute runs fn while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	release, err := b.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// InUse is the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.slots) }
