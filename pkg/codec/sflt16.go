package codec

import "math"

// Saturation limits of the 16-bit semi-float.
const (
	MaxFloat16 uint16 = 0x7FFF
	MinFloat16 uint16 = 0xFFFF
)

const (
	float16Bias     = 15
	float16MantBits = 11
	float16MaxExp   = 15
	float16SignBit  = 0x8000
)

// EncodeFloat16 packs v into the 16-bit semi-float format. Values at or below
// -1 and at or above 1 saturate; NaN encodes as zero.
func EncodeFloat16(v float32) uint16 {
	if v != v {
		v = 0
	}
	if v <= -1 {
		return MinFloat16
	}
	if v >= 1 {
		return MaxFloat16
	}

	frac, exp := math.Frexp(float64(v))
	var sign uint16
	if frac < 0 {
		sign = float16SignBit
		frac = -frac
	}

	exp += float16Bias
	if exp < 0 {
		exp = 0
	}

	mant := uint16(math.Ldexp(frac, float16MantBits) + 0.5)
	if mant >= 1<<float16MantBits {
		// rounding carried out of the mantissa
		mant = 1 << (float16MantBits - 1)
		exp++
	}
	if exp > float16MaxExp {
		return MaxFloat16 | sign
	}
	return sign | uint16(exp)<<float16MantBits | mant
}

// DecodeFloat16 is the inverse of EncodeFloat16.
func DecodeFloat16(raw uint16) float32 {
	exp := int(raw>>float16MantBits) & 0xF
	mant := float64(raw&(1<<float16MantBits-1)) / (1 << float16MantBits)
	v := math.Ldexp(mant, exp-float16Bias)
	if raw&float16SignBit != 0 {
		v = -v
	}
	return float32(v)
}
