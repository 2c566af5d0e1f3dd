package store

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"
)

// EEPROM is an AT24Cxx serial EEPROM on an I2C bus. Only the first size
// bytes are used.
type EEPROM struct {
	mu   sync.Mutex
	dev  at24cx.Device
	size int64
}

// NewEEPROM configures the EEPROM at its default address.
func NewEEPROM(bus drivers.I2C, size int64) *EEPROM {
	dev := at24cx.New(bus)
	dev.Configure(at24cx.Config{EndRAMAddress: uint16(size)})
	return &EEPROM{dev: dev, size: size}
}

// ReadAt implements io.ReaderAt.
func (e *EEPROM) ReadAt(p []byte, off int64) (int, error) {
	if err := e.check(len(p), off); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dev.ReadAt(p, off)
}

// WriteAt implements io.WriterAt. The driver splits writes at page
// boundaries and waits out each page's write cycle.
func (e *EEPROM) WriteAt(p []byte, off int64) (int, error) {
	if err := e.check(len(p), off); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dev.WriteAt(p, off)
}

// Size returns the usable size in bytes.
func (e *EEPROM) Size() int64 {
	return e.size
}

func (e *EEPROM) check(n int, off int64) error {
	if off < 0 || off+int64(n) > e.size {
		return fmt.Errorf("%w: %d bytes at %d, size %d", ErrOutOfRange, n, off, e.size)
	}
	return nil
}
