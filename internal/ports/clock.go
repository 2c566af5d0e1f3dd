package ports

// Clock is the node's epoch clock in seconds.
type Clock interface {
	// Now returns the current epoch. A volatile clock returns 0 until set.
	Now() uint32

	// Set commits a new epoch.
	Set(epoch uint32) error

	// BatteryBacked reports whether the clock survives power loss.
	BatteryBacked() bool

	// Valid reports whether Now can be trusted: a volatile clock has been
	// set, a battery-backed clock has not lost power.
	Valid() bool
}

// Thermometer is implemented by clocks with an on-die temperature sensor.
// The node falls back to it when the weather sensor cannot be read.
type Thermometer interface {
	Temperature() (float32, error)
}
