package airship

import (
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/log"
)

// Hardware contracts a Station is built from. Implementations are found in
// internal/adapters; tests and embedders may supply their own.
type (
	ByteStore     = ports.ByteStore
	Clock         = ports.Clock
	Radio         = ports.Radio
	Sensors       = ports.Sensors
	Sleeper       = ports.Sleeper
	Waiter        = ports.Waiter
	Downlink      = ports.Downlink
	DownlinkQueue = ports.DownlinkQueue
)

// Option configures optional behavior of a Station.
type Option func(*options)

type options struct {
	logger       log.Logger
	store        ports.ByteStore
	clock        ports.Clock
	radio        ports.Radio
	sensors      ports.Sensors
	sleeper      ports.Sleeper
	waiter       ports.Waiter
	eventHandler EventHandler
	plugins      []Plugin
}

func defaultOptions() options {
	return options{logger: log.NewNoopLogger()}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore sets the non-volatile byte store. If not provided, a file image
// under StateDir is used, or memory when StateDir is empty.
func WithStore(store ByteStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithClock sets the epoch clock. If not provided, a volatile software
// clock is used.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRadio sets the radio. If not provided, an in-process stub radio is
// used and exposed to plugins as the downlink queue.
func WithRadio(radio Radio) Option {
	return func(o *options) {
		o.radio = radio
	}
}

// WithSensors sets the sensor suite. If not provided, simulated sensors are used.
func WithSensors(sensors Sensors) Option {
	return func(o *options) {
		o.sensors = sensors
	}
}

// WithSleeper sets the deep-sleep primitive. If not provided, a watchdog
// emulation is used.
func WithSleeper(sleeper Sleeper) Option {
	return func(o *options) {
		o.sleeper = sleeper
	}
}

// WithWaiter sets the idle-wait primitive.
func WithWaiter(waiter Waiter) Option {
	return func(o *options) {
		o.waiter = waiter
	}
}

// WithEventHandler sets a handler for station events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the station starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
