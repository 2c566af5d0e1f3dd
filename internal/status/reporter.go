// Package status sends the node's configuration report uplink.
package status

import (
	"context"
	"fmt"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/codec"
	"github.com/bft-labs/airship/pkg/log"
)

// Uplinker sends one uplink and returns the downlink from its receive window.
type Uplinker interface {
	Send(ctx context.Context, port uint8, payload []byte) (ports.Downlink, error)
}

// Reporter serializes the configuration with a clock timestamp and sends it
// on ports.PortStatus.
type Reporter struct {
	clock  ports.Clock
	radio  Uplinker
	logger log.Logger
}

// New creates a Reporter.
func New(clock ports.Clock, radio Uplinker, logger log.Logger) *Reporter {
	return &Reporter{clock: clock, radio: radio, logger: logger}
}

// Build returns the report for cfg stamped with the current clock reading.
func (r *Reporter) Build(cfg domain.Configuration) codec.StatusReport {
	return codec.StatusReport{
		SendIntervalMinutes:       cfg.SendIntervalMinutes,
		CleanIntervalDays:         cfg.CleanIntervalDays,
		StabilizationDelayMinutes: cfg.StabilizationDelayMinutes,
		StopAfterReadout:          cfg.StopAfterReadout,
		ResyncIntervalDays:        cfg.ResyncIntervalDays,
		OverrideTimeSync:          cfg.OverrideTimeSync,
		AllowDeepSleep:            cfg.AllowDeepSleep,
		Timestamp:                 r.clock.Now(),
	}
}

// Report sends the current configuration. A downlink that arrives in the
// report's receive window is dropped.
func (r *Reporter) Report(ctx context.Context, cfg domain.Configuration) error {
	payload, err := r.Build(cfg).MarshalBinary()
	if err != nil {
		return err
	}

	dl, err := r.radio.Send(ctx, ports.PortStatus, payload)
	if err != nil {
		return fmt.Errorf("send status report: %w", err)
	}
	r.logger.Info("status report sent", log.Hex("payload", payload))

	if !dl.Empty() {
		r.logger.Warn("downlink on status report dropped",
			log.Int("port", int(dl.Port)),
			log.Hex("data", dl.Data),
		)
	}
	return nil
}
