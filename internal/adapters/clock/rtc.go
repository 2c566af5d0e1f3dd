package clock

import (
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"

	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/log"
)

// RTC is a battery-backed DS3231 real-time clock.
type RTC struct {
	mu     sync.Mutex
	dev    ds3231.Device
	logger log.Logger
}

// NewRTC attaches to a DS3231 on bus and starts its oscillator if it was
// halted.
func NewRTC(bus drivers.I2C, logger log.Logger) (*RTC, error) {
	dev := ds3231.New(bus)
	dev.Configure()

	if !dev.IsRunning() {
		if err := dev.SetRunning(true); err != nil {
			return nil, fmt.Errorf("start rtc oscillator: %w", err)
		}
	}
	return &RTC{dev: dev, logger: logger}, nil
}

// Now returns the chip time as an epoch. A bus error reads as 0.
func (c *RTC) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.dev.ReadTime()
	if err != nil {
		c.logger.Warn("rtc read failed", log.Err(err))
		return 0
	}
	return uint32(t.Unix())
}

// Set writes epoch to the chip, which also clears its oscillator-stop flag.
func (c *RTC) Set(epoch uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.dev.SetTime(time.Unix(int64(epoch), 0).UTC()); err != nil {
		return fmt.Errorf("set rtc time: %w", err)
	}
	return c.dev.SetRunning(true)
}

// BatteryBacked is always true.
func (c *RTC) BatteryBacked() bool { return true }

// Valid reports whether the oscillator has run without interruption since
// the time was last set.
func (c *RTC) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.IsTimeValid()
}

// Temperature returns the die temperature in degrees Celsius.
func (c *RTC) Temperature() (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mc, err := c.dev.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return float32(mc) / 1000, nil
}

var (
	_ ports.Clock = (*Software)(nil)
	_ ports.Clock = (*RTC)(nil)

	_ ports.Thermometer = (*RTC)(nil)
)
