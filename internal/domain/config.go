package domain

import "time"

// ConfigVersion is the layout version of the persisted configuration.
// A stored record with any other version is replaced by defaults.
const ConfigVersion uint8 = 1

// Compiled-in configuration defaults.
const (
	DefaultSendIntervalMinutes       uint16 = 60
	DefaultCleanIntervalDays         uint8  = 7
	DefaultStabilizationDelayMinutes uint8  = 5
	DefaultStopAfterReadout                 = true
	DefaultResyncIntervalDays        uint8  = 7
	DefaultOverrideTimeSync                 = false
	DefaultAllowDeepSleep                   = false
)

// Bounds applied to operator-supplied values.
const (
	SendIntervalStep        uint16 = 5
	MinSendIntervalMinutes  uint16 = 5
	MinStabilizationMinutes uint8  = 3
)

const (
	SecondsPerMinute = 60
	SecondsPerDay    = 86400
)

// Configuration is the operator-tunable behavior of a node.
type Configuration struct {
	SendIntervalMinutes       uint16
	CleanIntervalDays         uint8
	StabilizationDelayMinutes uint8
	StopAfterReadout          bool
	ResyncIntervalDays        uint8
	OverrideTimeSync          bool
	AllowDeepSleep            bool
	Version                   uint8
}

// DefaultConfiguration returns the compiled-in defaults. Deep sleep is only
// allowed when the node keeps time across power loss.
func DefaultConfiguration(hasHardwareClock bool) Configuration {
	return Configuration{
		SendIntervalMinutes:       DefaultSendIntervalMinutes,
		CleanIntervalDays:         DefaultCleanIntervalDays,
		StabilizationDelayMinutes: DefaultStabilizationDelayMinutes,
		StopAfterReadout:          DefaultStopAfterReadout,
		ResyncIntervalDays:        DefaultResyncIntervalDays,
		OverrideTimeSync:          DefaultOverrideTimeSync,
		AllowDeepSleep:            DefaultAllowDeepSleep && hasHardwareClock,
		Version:                   ConfigVersion,
	}
}

// SlotSeconds returns the slot length in seconds.
func (c Configuration) SlotSeconds() uint32 {
	return uint32(c.SendIntervalMinutes) * SecondsPerMinute
}

// SlotDuration returns the slot length.
func (c Configuration) SlotDuration() time.Duration {
	return time.Duration(c.SlotSeconds()) * time.Second
}

// StabilizationSeconds returns the pre-readout stabilization delay in seconds.
func (c Configuration) StabilizationSeconds() uint32 {
	return uint32(c.StabilizationDelayMinutes) * SecondsPerMinute
}

// ResyncSeconds returns the resynchronization interval in seconds.
func (c Configuration) ResyncSeconds() uint32 {
	return uint32(c.ResyncIntervalDays) * SecondsPerDay
}

// RestrictToClock clears AllowDeepSleep when no hardware clock is present.
// It reports whether the configuration changed.
func (c *Configuration) RestrictToClock(hasHardwareClock bool) bool {
	if hasHardwareClock || !c.AllowDeepSleep {
		return false
	}
	c.AllowDeepSleep = false
	return true
}

// ClampStabilization keeps the stabilization delay within the send interval.
// It reports whether the configuration changed.
func (c *Configuration) ClampStabilization() bool {
	if uint16(c.StabilizationDelayMinutes) <= c.SendIntervalMinutes {
		return false
	}
	c.StabilizationDelayMinutes = uint8(c.SendIntervalMinutes)
	return true
}
