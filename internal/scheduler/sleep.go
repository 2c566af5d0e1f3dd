package scheduler

import (
	"context"
	"time"

	"github.com/bft-labs/airship/pkg/log"
)

// SleepSteps are the discrete low-power sleep durations, largest first.
var SleepSteps = []time.Duration{
	8 * time.Second,
	4 * time.Second,
	2 * time.Second,
	1 * time.Second,
	500 * time.Millisecond,
	250 * time.Millisecond,
	120 * time.Millisecond,
	60 * time.Millisecond,
	30 * time.Millisecond,
	15 * time.Millisecond,
}

// NextStep returns the largest sleep step not exceeding remaining. Below the
// smallest step it returns the smallest step, so a decomposition always ends
// and overshoots by less than one smallest step.
func NextStep(remaining time.Duration) time.Duration {
	for _, step := range SleepSteps {
		if step <= remaining {
			return step
		}
	}
	return SleepSteps[len(SleepSteps)-1]
}

// deepSleep spends total in low-power sleep steps.
func (s *Scheduler) deepSleep(ctx context.Context, total time.Duration) error {
	steps := 0
	for remaining := total; remaining > 0; {
		step := NextStep(remaining)
		if err := s.sleeper.SleepFor(ctx, step); err != nil {
			return err
		}
		if s.wake != nil && !s.wake.Clear() {
			s.logger.Debug("sleep step ended without watchdog wake", log.Duration("step", step))
		}
		remaining -= step
		steps++
	}
	s.logger.Debug("deep sleep finished",
		log.Duration("total", total),
		log.Int("steps", steps),
	)
	return nil
}
