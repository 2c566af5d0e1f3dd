package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/airship/internal/ports"
)

// File is a byte store persisted to a single image file. Every write
// rewrites the image atomically through a temp file and rename, so a crash
// leaves either the old or the new image on disk.
type File struct {
	*Memory
	path string
}

// OpenFile loads the image at path or creates an erased one of size bytes.
// An existing image of a different size is truncated or padded with erased
// cells.
func OpenFile(path string, size int64) (*File, error) {
	f := &File{Memory: NewMemory(size), path: path}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		copy(f.data, data)
		if int64(len(data)) == size {
			return f, nil
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read store image: %w", err)
	}

	if err := f.flush(f.data); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteAt writes p at off and persists the image.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.writeLocked(p, off)
	if err != nil {
		return 0, err
	}
	if err := f.flush(f.data); err != nil {
		return 0, err
	}
	return n, nil
}

// Path returns the image file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) flush(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store image: %w", err)
	}
	return os.Rename(tmp, f.path)
}

var (
	_ ports.ByteStore = (*Memory)(nil)
	_ ports.ByteStore = (*File)(nil)
	_ ports.ByteStore = (*EEPROM)(nil)
)
