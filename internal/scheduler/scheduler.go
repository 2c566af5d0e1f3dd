package scheduler

import (
	"context"
	"time"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/log"
)

// ReadoutLead is how long before the slot boundary sensors are read, so the
// uplink leaves on the boundary.
const ReadoutLead = 135 * time.Millisecond

// Mode selects how the next transmission is timed.
type Mode int

const (
	ModeSynchronized Mode = iota
	ModeOverride
	// ModeHoldover waits one interval without committing a slot because
	// the clock reads more than a slot behind the committed boundary.
	ModeHoldover
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSynchronized:
		return "synchronized"
	case ModeOverride:
		return "override"
	case ModeHoldover:
		return "holdover"
	default:
		return "unknown"
	}
}

// Plan is one scheduling decision.
type Plan struct {
	Mode Mode

	// Slot and Boundary are the committed slot and its transmit epoch.
	// Both are zero in override and holdover modes.
	Slot     uint32
	Boundary uint32

	// Wait is how long to block before the readout phase begins.
	Wait time.Duration

	// Deep is true when Wait is spent in low-power sleep.
	Deep bool
}

// Scheduler computes transmit instants and waits for them.
type Scheduler struct {
	clock   ports.Clock
	sleeper ports.Sleeper
	waiter  ports.Waiter
	wake    *WakeFlag
	logger  log.Logger
}

// New creates a Scheduler. wake may be nil when the sleeper has no watchdog.
func New(clock ports.Clock, sleeper ports.Sleeper, waiter ports.Waiter, wake *WakeFlag, logger log.Logger) *Scheduler {
	return &Scheduler{
		clock:   clock,
		sleeper: sleeper,
		waiter:  waiter,
		wake:    wake,
		logger:  logger,
	}
}

// Plan computes the next transmission and commits it to st.
func (s *Scheduler) Plan(cfg domain.Configuration, st *domain.ScheduleState) Plan {
	if cfg.OverrideTimeSync {
		return intervalPlan(ModeOverride, cfg, cfg.SlotDuration())
	}

	interval := uint32(cfg.SendIntervalMinutes)
	if interval == 0 {
		// only a torn configuration write leaves a zero interval behind
		interval = uint32(domain.MinSendIntervalMinutes)
	}
	slotLen := interval * domain.SecondsPerMinute

	now := s.clock.Now()
	if st.NextSlotEpoch > slotLen && now < st.NextSlotEpoch-slotLen {
		s.logger.Warn("clock behind committed slot, holding one interval",
			log.Epoch("now", now),
			log.Epoch("boundary", st.NextSlotEpoch),
		)
		return intervalPlan(ModeHoldover, cfg, time.Duration(slotLen)*time.Second)
	}
	slot := (now / domain.SecondsPerMinute) / interval
	next := slot*slotLen + slotLen

	// a boundary at or before the last committed one was already served
	if next <= st.NextSlotEpoch {
		skip := (st.NextSlotEpoch-next)/slotLen + 1
		slot += skip
		next += skip * slotLen
	}
	st.LastSentSlot = slot
	st.NextSlotEpoch = next

	wait := next - now
	if cfg.StopAfterReadout {
		lead := cfg.StabilizationSeconds()
		if wait >= lead {
			wait -= lead
		} else {
			// the stabilization window has already started
			wait = 0
		}
	}

	return Plan{
		Mode:     ModeSynchronized,
		Slot:     slot,
		Boundary: next,
		Wait:     time.Duration(wait) * time.Second,
		Deep:     cfg.AllowDeepSleep,
	}
}

// intervalPlan waits a fixed interval and leaves the slot state alone.
func intervalPlan(mode Mode, cfg domain.Configuration, wait time.Duration) Plan {
	if !cfg.AllowDeepSleep {
		wait -= ReadoutLead
	}
	return Plan{Mode: mode, Wait: wait, Deep: cfg.AllowDeepSleep}
}

// WaitUntilNextSlot plans the next transmission and blocks until its
// readout phase begins.
func (s *Scheduler) WaitUntilNextSlot(ctx context.Context, cfg domain.Configuration, st *domain.ScheduleState) (Plan, error) {
	p := s.Plan(cfg, st)

	s.logger.Info("waiting for next slot",
		log.String("mode", p.Mode.String()),
		log.Uint32("slot", p.Slot),
		log.Epoch("boundary", p.Boundary),
		log.Duration("wait", p.Wait),
		log.Bool("deep_sleep", p.Deep),
	)

	if p.Wait <= 0 {
		return p, nil
	}
	if p.Deep {
		return p, s.deepSleep(ctx, p.Wait)
	}
	return p, s.waiter.Wait(ctx, p.Wait)
}

// WaitForReadout blocks until ReadoutLead before the committed boundary.
// Outside synchronized mode readout follows the interval wait directly.
func (s *Scheduler) WaitForReadout(ctx context.Context, p Plan) error {
	if p.Mode != ModeSynchronized {
		return nil
	}
	now := s.clock.Now()
	if now >= p.Boundary {
		return nil
	}
	d := time.Duration(p.Boundary-now)*time.Second - ReadoutLead
	if d <= 0 {
		return nil
	}
	return s.waiter.Wait(ctx, d)
}
