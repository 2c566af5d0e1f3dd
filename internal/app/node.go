// Package app runs a sensor node: boot, network join, time synchronization
// and the slot-aligned measure-and-transmit cycle.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/airship/internal/configstore"
	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/downlink"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/internal/scheduler"
	"github.com/bft-labs/airship/internal/status"
	"github.com/bft-labs/airship/internal/timesync"
	"github.com/bft-labs/airship/pkg/codec"
	"github.com/bft-labs/airship/pkg/log"
)

// Join retry tuning.
const (
	MaxJoinFailures = 10
	JoinRetryDelay  = 5 * time.Second
	JoinSettleDelay = 30 * time.Second
)

// Particulate readiness polling.
const (
	SensorPollInterval = 100 * time.Millisecond
	MaxSensorPolls     = 50
)

// NodeConfig contains the host-provided settings of a node.
type NodeConfig struct {
	Identity       domain.DeviceIdentity
	TimezoneOffset time.Duration

	// Cycles bounds the number of transmit cycles. Zero runs until the
	// context is canceled.
	Cycles int
}

// Deps are the node's hardware collaborators.
type Deps struct {
	Store   ports.ByteStore
	Clock   ports.Clock
	Radio   ports.Radio
	Sensors ports.Sensors
	Sleeper ports.Sleeper
	Waiter  ports.Waiter

	// Wake is set by the sleeper's watchdog interrupt. May be nil.
	Wake *scheduler.WakeFlag
}

// Snapshot is the node state published after boot and every cycle.
type Snapshot struct {
	Config domain.Configuration
	State  domain.ScheduleState
	Cycles int
	Joined bool
}

// Node is the node control loop. Configuration and ScheduleState are owned
// by the goroutine calling Run.
type Node struct {
	cfg       NodeConfig
	store     *configstore.Store
	clock     ports.Clock
	radio     ports.Radio
	sensors   ports.Sensors
	waiter    ports.Waiter
	scheduler *scheduler.Scheduler
	sync      *timesync.Engine
	reporter  *status.Reporter
	downlinks *downlink.Processor
	logger    log.Logger

	config domain.Configuration
	state  domain.ScheduleState
	cycles int
	joined bool

	mu        sync.Mutex
	published Snapshot
}

// NewNode wires a node from its collaborators. emitter may be nil.
func NewNode(cfg NodeConfig, deps Deps, logger log.Logger, emitter EventEmitter) *Node {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	radio := &observedRadio{Radio: deps.Radio, emitter: emitter}
	store := configstore.New(deps.Store, logger)
	reporter := status.New(deps.Clock, radio, logger)
	engine := timesync.New(radio, deps.Clock, deps.Waiter, store, reporter, cfg.TimezoneOffset, logger)

	return &Node{
		cfg:       cfg,
		store:     store,
		clock:     deps.Clock,
		radio:     radio,
		sensors:   deps.Sensors,
		waiter:    deps.Waiter,
		scheduler: scheduler.New(deps.Clock, deps.Sleeper, deps.Waiter, deps.Wake, logger),
		sync:      engine,
		reporter:  reporter,
		downlinks: downlink.New(store, engine, reporter, deps.Sensors, deps.Clock.BatteryBacked(), logger),
		logger:    logger,
	}
}

// Run boots the node and runs transmit cycles until the cycle limit is
// reached or ctx is canceled. Only store failures and cancellation are
// returned.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Boot(ctx); err != nil {
		return err
	}
	return n.Loop(ctx)
}

// Loop runs transmit cycles on a booted node.
func (n *Node) Loop(ctx context.Context) error {
	for n.cfg.Cycles == 0 || n.cycles < n.cfg.Cycles {
		if err := n.Cycle(ctx); err != nil {
			return err
		}
	}
	n.logger.Info("cycle limit reached", log.Int("cycles", n.cycles))
	return nil
}

// Boot reconciles the persisted identity, loads the configuration, joins
// the network and sets the clock.
func (n *Node) Boot(ctx context.Context) error {
	hw := n.clock.BatteryBacked()

	changed, err := n.store.ReconcileIdentity(n.cfg.Identity)
	if err != nil {
		return err
	}
	if changed {
		n.logger.Info("session keys reset for new identity", log.String("dev_eui", n.cfg.Identity.String()))
	}

	cfg, migrated, err := n.store.Load(domain.DefaultConfiguration(hw))
	if err != nil {
		return err
	}
	if cfg.RestrictToClock(hw) {
		n.logger.Warn("deep sleep disabled without a hardware clock")
		if err := n.store.SaveFields(cfg, configstore.FieldAllowDeepSleep); err != nil {
			return err
		}
	}
	n.config = cfg
	n.logger.Info("configuration loaded",
		log.Bool("migrated", migrated),
		log.Int("send_interval_minutes", int(cfg.SendIntervalMinutes)),
		log.Bool("override_time_sync", cfg.OverrideTimeSync),
		log.Bool("allow_deep_sleep", cfg.AllowDeepSleep),
	)

	if err := n.join(ctx); err != nil {
		return err
	}

	if !hw || !n.clock.Valid() {
		if _, err := n.sync.Synchronize(ctx, &n.config, &n.state); err != nil {
			return err
		}
	}

	if err := n.sensors.StartParticulate(ctx); err != nil {
		n.logger.Warn("start particulate measurement failed", log.Err(err))
	}
	if err := n.sensors.SetCleaningInterval(ctx, n.config.CleanIntervalDays); err != nil {
		n.logger.Warn("set cleaning interval failed", log.Err(err))
	}

	n.publish()
	return nil
}

// Cycle waits for the next slot, reads the sensors, transmits the
// telemetry frame and handles the reply.
func (n *Node) Cycle(ctx context.Context) error {
	if !n.config.OverrideTimeSync && !n.clock.BatteryBacked() && !n.clock.Valid() {
		n.logger.Warn("clock not set, synchronizing before scheduling")
		if _, err := n.sync.Synchronize(ctx, &n.config, &n.state); err != nil {
			return err
		}
	}

	plan, err := n.scheduler.WaitUntilNextSlot(ctx, n.config, &n.state)
	if err != nil {
		return err
	}

	if n.config.StopAfterReadout {
		if err := n.sensors.StartParticulate(ctx); err != nil {
			n.logger.Warn("start particulate measurement failed", log.Err(err))
		}
	}

	if err := n.scheduler.WaitForReadout(ctx, plan); err != nil {
		return err
	}

	frame, err := n.readTelemetry(ctx)
	if err != nil {
		return err
	}

	dl, err := n.radio.Send(ctx, ports.PortTelemetry, frame)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.logger.Error("telemetry uplink failed", log.Err(err), log.Uint32("slot", plan.Slot))
	} else {
		n.logger.Info("telemetry sent",
			log.Uint32("slot", plan.Slot),
			log.Epoch("epoch", n.clock.Now()),
			log.Hex("payload", frame),
		)
		if err := n.downlinks.Process(ctx, &n.config, &n.state, dl); err != nil {
			return err
		}
	}

	if !n.config.OverrideTimeSync {
		if _, err := n.sync.CheckForResync(ctx, &n.config, &n.state); err != nil {
			return err
		}
	}

	if n.config.StopAfterReadout {
		if err := n.sensors.StopParticulate(ctx); err != nil {
			n.logger.Warn("stop particulate measurement failed", log.Err(err))
		}
	}

	n.cycles++
	n.publish()
	return nil
}

// Snapshot returns the state published after the last boot or cycle. Safe
// for concurrent use.
func (n *Node) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.published
}

func (n *Node) publish() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.published = Snapshot{
		Config: n.config,
		State:  n.state,
		Cycles: n.cycles,
		Joined: n.joined,
	}
}

// join attempts to join until accepted. After more than MaxJoinFailures
// consecutive failures the persisted session is wiped and configuration and
// identity are written back.
func (n *Node) join(ctx context.Context) error {
	err := n.radio.Join(ctx)
	if err == nil {
		n.joined = true
		n.logger.Info("joined network", log.String("dev_eui", n.cfg.Identity.String()))
		return nil
	}

	failures := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, domain.ErrNotJoined) {
			n.logger.Warn("join attempt failed", log.Err(err))
		}

		failures++
		n.logger.Info("joining", log.Int("attempt", failures))
		if failures > MaxJoinFailures {
			n.logger.Warn("join keeps failing, clearing persisted session", log.Int("failures", failures-1))
			if err := n.resetSession(); err != nil {
				return err
			}
			failures = 0
		}

		if err = n.radio.Join(ctx); err == nil {
			n.joined = true
			n.logger.Info("joined network, settling before first uplink",
				log.String("dev_eui", n.cfg.Identity.String()),
				log.Duration("settle", JoinSettleDelay),
			)
			return n.waiter.Wait(ctx, JoinSettleDelay)
		}

		if werr := n.waiter.Wait(ctx, JoinRetryDelay); werr != nil {
			return werr
		}
	}
}

func (n *Node) resetSession() error {
	if err := n.store.Clear(); err != nil {
		return err
	}
	if err := n.store.Save(n.config); err != nil {
		return err
	}
	return n.store.SaveIdentity(n.cfg.Identity)
}

// readTelemetry reads every sensor into a telemetry frame. Unavailable
// readings encode as zero; only cancellation is returned.
func (n *Node) readTelemetry(ctx context.Context) ([]byte, error) {
	var t codec.Telemetry

	w, err := n.sensors.ReadWeather(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		n.logger.Warn("weather read failed", log.Err(err))
		if th, ok := n.clock.(ports.Thermometer); ok {
			if c, terr := th.Temperature(); terr == nil {
				t.Temperature = c
				n.logger.Info("using clock temperature", log.Float64("celsius", float64(c)))
			}
		}
	} else {
		t.Weather = w
	}

	ready, err := n.awaitParticulate(ctx)
	if err != nil {
		return nil, err
	}
	if ready {
		p, err := n.sensors.ReadParticulate(ctx)
		if err != nil {
			n.logger.Warn("particulate read failed", log.Err(err))
		} else {
			t.Particulate = p
		}
	} else {
		n.logger.Warn("particulate measurement not ready, sending zeros",
			log.Duration("waited", MaxSensorPolls*SensorPollInterval),
		)
	}

	return codec.EncodeTelemetry(t), nil
}

func (n *Node) awaitParticulate(ctx context.Context) (bool, error) {
	for i := 0; i < MaxSensorPolls; i++ {
		ready, err := n.sensors.ParticulateReady(ctx)
		if err != nil {
			n.logger.Debug("particulate status read failed", log.Err(err))
		} else if ready {
			return true, nil
		}
		if err := n.waiter.Wait(ctx, SensorPollInterval); err != nil {
			return false, err
		}
	}
	return false, nil
}
