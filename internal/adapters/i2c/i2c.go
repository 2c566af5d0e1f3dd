// Package i2c exposes a host I2C adapter as a tinygo drivers.I2C bus.
package i2c

import (
	"errors"

	"tinygo.org/x/drivers"
)

// ErrUnsupported is returned by Open on platforms without i2c-dev.
var ErrUnsupported = errors.New("i2c: not supported on this platform")

var _ drivers.I2C = (*Bus)(nil)
