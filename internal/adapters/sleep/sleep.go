// Package sleep provides the low-power sleep and plain wait primitives.
package sleep

import (
	"context"
	"time"

	"github.com/bft-labs/airship/internal/ports"
)

// Watchdog emulates a watchdog-timer sleep: every step arms a one-shot
// timer whose callback plays the role of the watchdog interrupt.
type Watchdog struct {
	onInterrupt func()
}

// NewWatchdog creates a Watchdog that calls onInterrupt from the timer
// callback at the end of each step. onInterrupt may be nil.
func NewWatchdog(onInterrupt func()) *Watchdog {
	return &Watchdog{onInterrupt: onInterrupt}
}

// SleepFor sleeps for one step of d.
func (w *Watchdog) SleepFor(ctx context.Context, d time.Duration) error {
	fired := make(chan struct{})
	t := time.AfterFunc(d, func() {
		if w.onInterrupt != nil {
			w.onInterrupt()
		}
		close(fired)
	})

	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}

// Idle waits without a low-power mode. It serves both as the waiter for
// short delays and as the sleeper on hosts without a watchdog.
type Idle struct{}

// NewIdle creates an Idle.
func NewIdle() Idle { return Idle{} }

// Wait blocks for d or until ctx is done.
func (Idle) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SleepFor is Wait.
func (i Idle) SleepFor(ctx context.Context, d time.Duration) error {
	return i.Wait(ctx, d)
}

var (
	_ ports.Sleeper = (*Watchdog)(nil)
	_ ports.Sleeper = Idle{}
	_ ports.Waiter  = Idle{}
)
