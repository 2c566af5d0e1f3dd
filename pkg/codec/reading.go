package codec

import (
	"encoding/binary"
	"fmt"
)

// EncodeReading encodes values in order as little-endian semi-floats after
// dividing each by scale. The result is 2*len(values) bytes.
func EncodeReading(values []float32, scale float32) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], EncodeFloat16(v/scale))
	}
	return out
}

// DecodeReading reverses EncodeReading.
func DecodeReading(b []byte, scale float32) ([]float32, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: odd reading length %d", ErrShortPayload, len(b))
	}
	values := make([]float32, len(b)/2)
	for i := range values {
		values[i] = DecodeFloat16(binary.LittleEndian.Uint16(b[2*i:])) * scale
	}
	return values, nil
}
