package airship

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bft-labs/airship/internal/adapters/clock"
	"github.com/bft-labs/airship/internal/adapters/radio"
	"github.com/bft-labs/airship/internal/adapters/sensors"
	"github.com/bft-labs/airship/internal/adapters/sleep"
	"github.com/bft-labs/airship/internal/adapters/store"
	"github.com/bft-labs/airship/internal/app"
	"github.com/bft-labs/airship/internal/configstore"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/internal/scheduler"
	"github.com/bft-labs/airship/pkg/lifecycle"
	"github.com/bft-labs/airship/pkg/log"
)

// StoreFile is the name of the store image under StateDir.
const StoreFile = "eeprom.bin"

// Snapshot is the node state published after boot and every cycle.
type Snapshot = app.Snapshot

// Station is a sensor node that can be embedded in other applications.
// Use New to create one, then Start to boot it.
type Station struct {
	config    Config
	runID     string
	lifecycle *lifecycle.DefaultManager
	node      *app.Node
	downlinks ports.DownlinkQueue
	logger    log.Logger

	plugins []Plugin

	mu     sync.Mutex
	active []Plugin
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// New creates a Station with the given configuration. The station is
// created in StateStopped; call Start to boot it.
func New(cfg Config, opts ...Option) (*Station, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	runID := uuid.NewString()
	logger := log.With(o.logger, log.String("run_id", runID), log.EUI("dev_eui", cfg.identity.DevEUI))

	deps, err := buildDeps(cfg, o, logger)
	if err != nil {
		return nil, err
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	node := app.NewNode(app.NodeConfig{
		Identity:       cfg.identity,
		TimezoneOffset: cfg.TimezoneOffset,
		Cycles:         cfg.Cycles,
	}, deps, logger, emitter)

	s := &Station{
		config:    cfg,
		runID:     runID,
		lifecycle: lifecycle.NewManager(logger, emitter),
		node:      node,
		logger:    logger,
		plugins:   o.plugins,
	}
	if q, ok := deps.Radio.(ports.DownlinkQueue); ok {
		s.downlinks = q
	}
	return s, nil
}

// buildDeps fills every collaborator not supplied by an option.
func buildDeps(cfg Config, o options, logger log.Logger) (app.Deps, error) {
	deps := app.Deps{
		Store:   o.store,
		Clock:   o.clock,
		Radio:   o.radio,
		Sensors: o.sensors,
		Sleeper: o.sleeper,
		Waiter:  o.waiter,
	}
	if deps.Store == nil {
		if cfg.StateDir == "" {
			deps.Store = store.NewMemory(configstore.StoreSize)
		} else {
			f, err := store.OpenFile(filepath.Join(cfg.StateDir, StoreFile), configstore.StoreSize)
			if err != nil {
				return deps, fmt.Errorf("open store: %w", err)
			}
			deps.Store = f
		}
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewSoftware()
	}
	if deps.Radio == nil {
		deps.Radio = radio.NewStub(logger)
	}
	if deps.Sensors == nil {
		deps.Sensors = sensors.NewSimulated(cfg.SensorSeed)
	}
	if deps.Sleeper == nil {
		deps.Wake = &scheduler.WakeFlag{}
		deps.Sleeper = sleep.NewWatchdog(deps.Wake.Set)
	}
	if deps.Waiter == nil {
		deps.Waiter = sleep.NewIdle()
	}
	return deps, nil
}

// Start boots the node in the background and returns once plugins are
// initialized. ctx bounds the lifetime of the station.
func (s *Station) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(StateBooting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lifecycle.SetCancel(cancel)
	s.done = make(chan struct{})
	s.err = nil

	pluginCfg := PluginConfig{
		StateDir:  s.config.StateDir,
		RunID:     s.runID,
		Logger:    s.logger,
		Downlinks: s.downlinks,
	}
	s.active = s.active[:0]
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			s.shutdownPluginsLocked()
			_ = s.lifecycle.TransitionTo(StateCrashed, "plugin init failed: "+p.Name())
			close(s.done)
			return err
		}
		s.active = append(s.active, p)
		s.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	s.logger.Info("station starting", log.String("run_id", s.runID))
	s.lifecycle.AddWorker()
	go s.run(runCtx, s.done)
	return nil
}

func (s *Station) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.lifecycle.WorkerDone()

	err := s.node.Boot(ctx)
	if err == nil {
		if terr := s.lifecycle.TransitionTo(StateRunning, "node booted"); terr != nil {
			// Stop raced the boot.
			return
		}
		err = s.node.Loop(ctx)
	}

	switch {
	case err == nil:
		if s.lifecycle.TransitionTo(StateStopping, "cycle limit reached") != nil {
			return
		}
		s.mu.Lock()
		s.cancel()
		s.shutdownPluginsLocked()
		s.mu.Unlock()
		_ = s.lifecycle.TransitionTo(StateStopped, "cycle limit reached")
	case errors.Is(err, context.Canceled):
	default:
		s.logger.Error("node error", log.Err(err))
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		_ = s.lifecycle.TransitionTo(StateCrashed, err.Error())
	}
}

// Stop cancels the node and waits for it to exit, then shuts plugins down.
// Returns ErrShutdownTimeout if the node does not exit within
// lifecycle.ShutdownTimeout.
func (s *Station) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(lifecycle.ShutdownTimeout)

	s.mu.Lock()
	s.shutdownPluginsLocked()
	s.mu.Unlock()

	if err != nil {
		_ = s.lifecycle.TransitionTo(StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(StateStopped, "graceful shutdown")
	}
	return err
}

// shutdownPluginsLocked shuts down initialized plugins in reverse order.
func (s *Station) shutdownPluginsLocked() {
	ctx := context.Background()
	for i := len(s.active) - 1; i >= 0; i-- {
		p := s.active[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
	s.active = s.active[:0]
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Station) Status() State {
	return s.lifecycle.State()
}

// Done is closed when the node goroutine of the latest Start exits.
// It is nil before the first Start.
func (s *Station) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error that crashed the node, if any.
func (s *Station) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Snapshot returns the node state published after the last boot or cycle.
func (s *Station) Snapshot() Snapshot {
	return s.node.Snapshot()
}

// RunID identifies this station instance in logs and bridge requests.
func (s *Station) RunID() string {
	return s.runID
}
