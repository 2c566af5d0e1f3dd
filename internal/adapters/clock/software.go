// Package clock provides ports.Clock implementations.
package clock

import (
	"sync"
	"time"
)

// Software is a volatile clock counted from the host's monotonic time. It
// reads 0 until it is first set and loses its value on restart.
type Software struct {
	mu    sync.Mutex
	now   func() time.Time
	base  uint32
	setAt time.Time
	set   bool
}

// NewSoftware creates an unset software clock.
func NewSoftware() *Software {
	return NewSoftwareWithSource(time.Now)
}

// NewSoftwareWithSource creates an unset software clock driven by now.
func NewSoftwareWithSource(now func() time.Time) *Software {
	return &Software{now: now}
}

// Now returns the current epoch, or 0 while unset.
func (c *Software) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.set {
		return 0
	}
	return c.base + uint32(c.now().Sub(c.setAt)/time.Second)
}

// Set commits epoch as the current time.
func (c *Software) Set(epoch uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.base = epoch
	c.setAt = c.now()
	c.set = true
	return nil
}

// BatteryBacked is always false.
func (c *Software) BatteryBacked() bool { return false }

// Valid reports whether the clock has been set.
func (c *Software) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}
