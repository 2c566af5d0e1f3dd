package ports

import "io"

// EraseValue is the content of an erased persistent store cell.
const EraseValue byte = 0xFF

// ByteStore is byte-addressable persistent memory.
type ByteStore interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the addressable range in bytes.
	Size() int64
}
