//go:build linux

package i2c

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl selecting the target address.
const i2cSlave = 0x0703

// Bus is an open /dev/i2c-N adapter.
type Bus struct {
	mu   sync.Mutex
	fd   int
	addr uint16
	path string
}

// Open opens the i2c-dev character device at path, e.g. /dev/i2c-1.
func Open(path string) (*Bus, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Bus{fd: fd, path: path, addr: 0xFFFF}, nil
}

// Tx writes w and then reads len(r) bytes from the device at addr.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if addr != b.addr {
		if err := unix.IoctlSetInt(b.fd, i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("select i2c address %#x: %w", addr, err)
		}
		b.addr = addr
	}
	if len(w) > 0 {
		if _, err := unix.Write(b.fd, w); err != nil {
			return fmt.Errorf("i2c write %#x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		if _, err := unix.Read(b.fd, r); err != nil {
			return fmt.Errorf("i2c read %#x: %w", addr, err)
		}
	}
	return nil
}

// Close releases the device.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return unix.Close(b.fd)
}
