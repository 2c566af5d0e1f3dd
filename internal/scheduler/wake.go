package scheduler

import "sync/atomic"

// WakeFlag is set by the watchdog interrupt and cleared by the scheduler
// after every sleep step.
type WakeFlag struct {
	fired atomic.Bool
}

// Set marks the watchdog as fired. Safe to call from timer callbacks.
func (f *WakeFlag) Set() {
	f.fired.Store(true)
}

// Clear resets the flag and reports whether it was set.
func (f *WakeFlag) Clear() bool {
	return f.fired.Swap(false)
}
