package neatbird

import (
	"context"
	"time"
)

// Clock paces the simulation loop.
type Clock interface {
	// Wait blocks until the next tick is due or ctx is done.
	Wait(ctx context.Context) error
}

// Unpaced runs ticks back to back.
type Unpaced struct{}

func (Unpaced) Wait(ctx context.Context) error { return ctx.Err() }

// FixedStep keeps the loop at a steady ticks-per-second rate. Ticks that
// fall behind are run immediately until the loop catches up.
type FixedStep struct {
	step time.Duration
	next time.Time
	now  func() time.Time
}

// NewFixedStep constructs a FixedStep targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	return fs
}

// SetTPS changes the tick rate.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 30
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the tick period.
func (f *FixedStep) Step() time.Duration { return f.step }

func (f *FixedStep) Wait(ctx context.Context) error {
	now := f.now()
	if f.next.IsZero() {
		f.next = now
	}
	// don't try to catch up more than a second
	if now.Sub(f.next) > time.Second {
		f.next = now
	}
	delay := f.next.Sub(now)
	f.next = f.next.Add(f.step)
	if delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
