// Package timesync obtains network time for a node and decides when to
// resynchronize.
package timesync

import (
	"context"
	"time"

	"github.com/bft-labs/airship/internal/configstore"
	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/log"
)

// GPSToUnixOffset is the distance in seconds between the GPS epoch
// (1980-01-06) and the Unix epoch.
const GPSToUnixOffset = 315964800

// DefaultTimezoneOffset is the local-time offset applied to network time.
const DefaultTimezoneOffset = 2 * time.Hour

// BackoffMinutes is waited before each successive time request.
var BackoffMinutes = []uint16{0, 5, 30, 60, 120, 300, 720, 1440}

// TimeSource answers network time requests.
type TimeSource interface {
	RequestNetworkTime(ctx context.Context) (uint32, error)
}

// FieldWriter persists individual configuration fields.
type FieldWriter interface {
	SaveFields(cfg domain.Configuration, fields ...configstore.Field) error
}

// Reporter emits a status report.
type Reporter interface {
	Report(ctx context.Context, cfg domain.Configuration) error
}

// Engine synchronizes the node clock against network time.
type Engine struct {
	source   TimeSource
	clock    ports.Clock
	waiter   ports.Waiter
	store    FieldWriter
	reporter Reporter
	tzOffset int64
	logger   log.Logger
}

// New creates an Engine. tzOffset is added to network time before it is
// committed to the clock.
func New(source TimeSource, clock ports.Clock, waiter ports.Waiter, store FieldWriter, reporter Reporter, tzOffset time.Duration, logger log.Logger) *Engine {
	return &Engine{
		source:   source,
		clock:    clock,
		waiter:   waiter,
		store:    store,
		reporter: reporter,
		tzOffset: int64(tzOffset / time.Second),
		logger:   logger,
	}
}

// Synchronize requests network time, waiting out the backoff table between
// attempts. On success the clock is set and st.LastSyncEpoch updated. When
// every attempt fails the node falls back to override mode, persists that
// and reports it; ok is then false and err nil.
func (e *Engine) Synchronize(ctx context.Context, cfg *domain.Configuration, st *domain.ScheduleState) (ok bool, err error) {
	var gps uint32
	for attempt, minutes := range BackoffMinutes {
		if minutes > 0 {
			e.logger.Info("waiting before time request",
				log.Int("attempt", attempt+1),
				log.Duration("backoff", time.Duration(minutes)*time.Minute),
			)
			if err := e.waiter.Wait(ctx, time.Duration(minutes)*time.Minute); err != nil {
				return false, err
			}
		}

		gps, err = e.source.RequestNetworkTime(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			e.logger.Warn("time request failed", log.Int("attempt", attempt+1), log.Err(err))
			gps = 0
		}
		if gps != 0 {
			break
		}
	}

	if gps == 0 {
		e.logger.Error("time synchronization failed, switching to override mode",
			log.Int("attempts", len(BackoffMinutes)),
		)
		cfg.OverrideTimeSync = true
		if err := e.store.SaveFields(*cfg, configstore.FieldOverrideTimeSync); err != nil {
			return false, err
		}
		if err := e.reporter.Report(ctx, *cfg); err != nil {
			e.logger.Warn("status report after sync failure not sent", log.Err(err))
		}
		return false, nil
	}

	local := uint32(int64(gps) + GPSToUnixOffset + e.tzOffset)
	if err := e.clock.Set(local); err != nil {
		return false, err
	}
	st.LastSyncEpoch = e.clock.Now()

	e.logger.Info("clock synchronized",
		log.Uint32("gps_epoch", gps),
		log.Epoch("local_epoch", st.LastSyncEpoch),
	)
	return true, nil
}

// CheckForResync synchronizes when the resync interval has elapsed since
// the last synchronization. A node that never synchronized is treated as
// having done so a third of an interval ago.
func (e *Engine) CheckForResync(ctx context.Context, cfg *domain.Configuration, st *domain.ScheduleState) (bool, error) {
	now := e.clock.Now()
	interval := cfg.ResyncSeconds()
	if st.LastSyncEpoch == 0 {
		st.LastSyncEpoch = now - interval/3
	}
	if now-st.LastSyncEpoch < interval {
		return false, nil
	}

	e.logger.Info("resync interval elapsed",
		log.Epoch("last_sync", st.LastSyncEpoch),
		log.Epoch("now", now),
	)
	return e.Synchronize(ctx, cfg, st)
}
