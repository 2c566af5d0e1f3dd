package airship

import (
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/lifecycle"
)

// State is the lifecycle state of a Station.
type State = lifecycle.State

// Lifecycle states.
const (
	StateStopped  = lifecycle.StateStopped
	StateBooting  = lifecycle.StateBooting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// UplinkEvent describes a frame the radio accepted.
type UplinkEvent struct {
	Port    uint8
	Payload []byte
}

// DownlinkEvent describes a frame received in a receive window.
type DownlinkEvent struct {
	Port    uint8
	Payload []byte
}

// EventHandler receives station events. Methods are called synchronously
// from the node goroutine and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnUplink(event UplinkEvent)
	OnDownlink(event DownlinkEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnUplink(UplinkEvent)           {}
func (BaseEventHandler) OnDownlink(DownlinkEvent)       {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current lifecycle.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnUplink(port uint8, payload []byte) {
	if e.handler == nil {
		return
	}
	e.handler.OnUplink(UplinkEvent{Port: port, Payload: append([]byte(nil), payload...)})
}

func (e *eventEmitterWrapper) OnDownlink(dl ports.Downlink) {
	if e.handler == nil {
		return
	}
	e.handler.OnDownlink(DownlinkEvent{Port: dl.Port, Payload: append([]byte(nil), dl.Data...)})
}
