// Package store provides ports.ByteStore implementations: a RAM image, a
// file-backed image for host runs and an AT24Cxx EEPROM over I2C.
package store

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bft-labs/airship/internal/ports"
)

// ErrOutOfRange is returned for writes past the end of the store.
var ErrOutOfRange = errors.New("store: write out of range")

// Memory is a volatile byte store, initialized erased.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory creates an erased store of size bytes.
func NewMemory(size int64) *Memory {
	data := make([]byte, size)
	for i := range data {
		data[i] = ports.EraseValue
	}
	return &Memory{data: data}
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(p, off)
}

func (m *Memory) writeLocked(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("%w: %d bytes at %d, size %d", ErrOutOfRange, len(p), off, len(m.data))
	}
	return copy(m.data[off:], p), nil
}

// Size returns the store size in bytes.
func (m *Memory) Size() int64 {
	return int64(len(m.data))
}

// Bytes returns a copy of the whole image.
func (m *Memory) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...)
}
