//go:build !linux

package i2c

// Bus is unavailable on this platform.
type Bus struct{}

// Open always fails with ErrUnsupported.
func Open(path string) (*Bus, error) {
	return nil, ErrUnsupported
}

// Tx always fails with ErrUnsupported.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	return ErrUnsupported
}

// Close is a no-op.
func (b *Bus) Close() error {
	return nil
}
