// Package downlink interprets remote configuration commands received in the
// downlink window of an uplink.
//
// Every command normalizes its value into range instead of rejecting it,
// updates the in-memory configuration, persists the changed fields and, for
// commands 1 to 7, confirms with a status report.
package downlink

import (
	"context"
	"encoding/binary"

	"github.com/bft-labs/airship/internal/configstore"
	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/log"
)

// FieldWriter persists individual configuration fields.
type FieldWriter interface {
	SaveFields(cfg domain.Configuration, fields ...configstore.Field) error
}

// Synchronizer runs a time synchronization.
type Synchronizer interface {
	Synchronize(ctx context.Context, cfg *domain.Configuration, st *domain.ScheduleState) (bool, error)
}

// Reporter emits a status report.
type Reporter interface {
	Report(ctx context.Context, cfg domain.Configuration) error
}

// Measurement controls the particulate sensor.
type Measurement interface {
	StartParticulate(ctx context.Context) error
	SetCleaningInterval(ctx context.Context, days uint8) error
}

// Processor applies downlink commands.
type Processor struct {
	store            FieldWriter
	sync             Synchronizer
	reporter         Reporter
	sensors          Measurement
	hasHardwareClock bool
	logger           log.Logger
}

// New creates a Processor.
func New(store FieldWriter, sync Synchronizer, reporter Reporter, sensors Measurement, hasHardwareClock bool, logger log.Logger) *Processor {
	return &Processor{
		store:            store,
		sync:             sync,
		reporter:         reporter,
		sensors:          sensors,
		hasHardwareClock: hasHardwareClock,
		logger:           logger,
	}
}

// Process applies dl to cfg. Only persistence failures and context
// cancellation are returned; out-of-range values are normalized and
// unknown ports are logged and ignored.
func (p *Processor) Process(ctx context.Context, cfg *domain.Configuration, st *domain.ScheduleState, dl ports.Downlink) error {
	if dl.Empty() {
		return nil
	}

	cmd := Command(dl.Port)
	if cmd.PayloadSize() == 0 {
		p.logger.Warn("unhandled downlink port", log.Int("port", int(dl.Port)), log.Hex("data", dl.Data))
		return nil
	}

	p.logger.Info("downlink command", log.String("command", cmd.String()), log.Hex("data", dl.Data))
	b := dl.Data[0]

	switch cmd {
	case CmdSendInterval:
		v := sendInterval(dl.Data)
		v = v / domain.SendIntervalStep * domain.SendIntervalStep
		if v < domain.MinSendIntervalMinutes {
			v = domain.MinSendIntervalMinutes
		}
		cfg.SendIntervalMinutes = v
		fields := []configstore.Field{configstore.FieldSendInterval}
		if cfg.ClampStabilization() {
			fields = append(fields, configstore.FieldStabilizationDelay)
		}
		return p.commit(ctx, cfg, fields...)

	case CmdCleanInterval:
		if b == 0 {
			b = domain.DefaultCleanIntervalDays
		}
		cfg.CleanIntervalDays = b
		if err := p.sensors.SetCleaningInterval(ctx, b); err != nil {
			p.logger.Warn("set cleaning interval failed", log.Err(err))
		}
		return p.commit(ctx, cfg, configstore.FieldCleanInterval)

	case CmdStabilizationDelay:
		if uint16(b) > cfg.SendIntervalMinutes {
			b = uint8(cfg.SendIntervalMinutes)
		}
		cfg.StabilizationDelayMinutes = b
		if b == 0 || uint16(b) == cfg.SendIntervalMinutes {
			cfg.StopAfterReadout = false
			p.resumeMeasurement(ctx)
		} else {
			cfg.StopAfterReadout = true
		}
		return p.commit(ctx, cfg, configstore.FieldStabilizationDelay, configstore.FieldStopAfterReadout)

	case CmdStopAfterReadout:
		fields := []configstore.Field{configstore.FieldStopAfterReadout}
		switch b {
		case 1:
			cfg.StopAfterReadout = true
			if uint16(cfg.StabilizationDelayMinutes) > cfg.SendIntervalMinutes {
				cfg.StabilizationDelayMinutes = uint8(cfg.SendIntervalMinutes)
				fields = append(fields, configstore.FieldStabilizationDelay)
			} else if cfg.StabilizationDelayMinutes < 1 {
				cfg.StabilizationDelayMinutes = domain.MinStabilizationMinutes
				fields = append(fields, configstore.FieldStabilizationDelay)
			}
		case 0:
			cfg.StopAfterReadout = false
			p.resumeMeasurement(ctx)
		}
		return p.commit(ctx, cfg, fields...)

	case CmdResyncInterval:
		if b == 0 {
			b = domain.DefaultResyncIntervalDays
		}
		cfg.ResyncIntervalDays = b
		return p.commit(ctx, cfg, configstore.FieldResyncInterval)

	case CmdOverrideTimeSync:
		cfg.OverrideTimeSync = b == 1
		return p.commit(ctx, cfg, configstore.FieldOverrideTimeSync)

	case CmdAllowDeepSleep:
		cfg.AllowDeepSleep = b == 1 && p.hasHardwareClock
		return p.commit(ctx, cfg, configstore.FieldAllowDeepSleep)

	case CmdForceResync:
		if b == 1 {
			_, err := p.sync.Synchronize(ctx, cfg, st)
			return err
		}

	case CmdRequestReport:
		if b == 1 {
			p.report(ctx, *cfg)
		}
	}
	return nil
}

// sendInterval reads the port 1 value: big-endian u16, or a lone byte
// taken as the value itself.
func sendInterval(data []byte) uint16 {
	if len(data) == 1 {
		return uint16(data[0])
	}
	return binary.BigEndian.Uint16(data)
}

// commit persists fields and confirms the change with a status report.
func (p *Processor) commit(ctx context.Context, cfg *domain.Configuration, fields ...configstore.Field) error {
	if err := p.store.SaveFields(*cfg, fields...); err != nil {
		return err
	}
	p.report(ctx, *cfg)
	return nil
}

func (p *Processor) report(ctx context.Context, cfg domain.Configuration) {
	if err := p.reporter.Report(ctx, cfg); err != nil {
		p.logger.Warn("status report not sent", log.Err(err))
	}
}

func (p *Processor) resumeMeasurement(ctx context.Context) {
	if err := p.sensors.StartParticulate(ctx); err != nil {
		p.logger.Warn("resume particulate measurement failed", log.Err(err))
	}
}
