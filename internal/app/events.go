package app

import (
	"context"

	"github.com/bft-labs/airship/internal/ports"
)

// EventEmitter is notified of radio traffic.
type EventEmitter interface {
	OnUplink(port uint8, payload []byte)
	OnDownlink(dl ports.Downlink)
}

type noopEmitter struct{}

func (noopEmitter) OnUplink(uint8, []byte)    {}
func (noopEmitter) OnDownlink(ports.Downlink) {}

// observedRadio reports every successful exchange to an EventEmitter.
type observedRadio struct {
	ports.Radio
	emitter EventEmitter
}

func (r *observedRadio) Send(ctx context.Context, port uint8, payload []byte) (ports.Downlink, error) {
	dl, err := r.Radio.Send(ctx, port, payload)
	if err != nil {
		return dl, err
	}
	r.emitter.OnUplink(port, payload)
	if !dl.Empty() {
		r.emitter.OnDownlink(dl)
	}
	return dl, nil
}
