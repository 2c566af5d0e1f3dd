package ports

import (
	"context"
	"time"
)

// Sleeper performs one discrete low-power sleep step. Callers split longer
// waits into the step durations the hardware supports.
type Sleeper interface {
	SleepFor(ctx context.Context, d time.Duration) error
}

// Waiter blocks without entering low-power sleep.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}
