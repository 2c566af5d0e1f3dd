// Package codec packs sensor readings and node status into the fixed-size
// uplink payloads of an airship station.
//
// Readings travel as 16-bit semi-floats: one sign bit, a 4-bit exponent with
// a bias of 15 and an 11-bit mantissa. The representable range is the open
// interval (-1, 1), so physical values are divided by a per-channel scale
// before encoding. Values outside the range saturate.
//
// # Telemetry frame
//
// A telemetry uplink is always FrameSize bytes, each channel a little-endian
// semi-float scaled by ValueScale:
//
//	offset  channel
//	0       temperature
//	2       relative humidity
//	4       mass concentration PM1.0
//	6       mass concentration PM2.5
//	8       mass concentration PM4.0
//	10      mass concentration PM10
//	12      number concentration PM0.5
//	14      number concentration PM1.0
//	16      number concentration PM2.5
//	18      number concentration PM4.0
//	20      number concentration PM10
//	22      typical particle size
//	24      reserved, zero
//
// # Status report
//
// See StatusReport for the 12-byte configuration report layout.
package codec
