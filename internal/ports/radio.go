package ports

import "context"

// Uplink ports.
const (
	PortTelemetry   uint8 = 1
	PortTimeRequest uint8 = 3
	PortStatus      uint8 = 4
)

// Downlink is a message received in the receive window of an uplink.
type Downlink struct {
	Port uint8
	Data []byte
}

// Empty reports whether nothing was received.
func (d Downlink) Empty() bool {
	return len(d.Data) == 0
}

// Radio is the network link.
type Radio interface {
	// Join attempts one network join. It returns domain.ErrNotJoined when
	// the network did not accept the node.
	Join(ctx context.Context) error

	// Send transmits payload on port and returns whatever downlink arrived
	// in the receive window.
	Send(ctx context.Context, port uint8, payload []byte) (Downlink, error)

	// RequestNetworkTime asks the network for the current GPS epoch.
	// A zero epoch means the request failed.
	RequestNetworkTime(ctx context.Context) (uint32, error)
}

// DownlinkQueue accepts downlinks for delivery in a later receive window.
type DownlinkQueue interface {
	Enqueue(dl Downlink)
}
