package airship

import (
	"fmt"
	"time"

	"github.com/bft-labs/airship/internal/domain"
)

// DefaultTimezoneOffset is the local offset applied to network time when
// none is configured.
const DefaultTimezoneOffset = 2 * time.Hour

// Config holds the settings of an embedded station.
type Config struct {
	// StateDir holds the persisted store image. When empty and no store is
	// injected, configuration lives in memory only.
	StateDir string

	// Radio credentials in hex. DevEUI and JoinEUI are required.
	DevEUI  string
	JoinEUI string
	AppKey  string

	// TimezoneOffset is added to network time before it is written to the clock.
	TimezoneOffset time.Duration

	// Cycles bounds the number of transmit cycles. Zero runs until Stop.
	Cycles int

	// SensorSeed seeds the simulated sensors used when none are injected.
	SensorSeed int64

	identity domain.DeviceIdentity
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		TimezoneOffset: DefaultTimezoneOffset,
		SensorSeed:     1,
	}
}

// SetDefaults fills zero-valued fields that have a non-zero default.
func (c *Config) SetDefaults() {
	if c.SensorSeed == 0 {
		c.SensorSeed = 1
	}
}

// Validate checks the configuration and decodes the credentials.
func (c *Config) Validate() error {
	if c.DevEUI == "" || c.JoinEUI == "" {
		return fmt.Errorf("%w: dev-eui and join-eui are required", ErrInvalidConfig)
	}
	if c.Cycles < 0 {
		return fmt.Errorf("%w: cycles must not be negative", ErrInvalidConfig)
	}
	id, err := domain.ParseIdentity(c.DevEUI, c.JoinEUI, c.AppKey)
	if err != nil {
		return err
	}
	c.identity = id
	return nil
}
