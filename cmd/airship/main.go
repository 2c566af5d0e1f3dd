package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/airship/internal/adapters/clock"
	"github.com/bft-labs/airship/internal/adapters/i2c"
	"github.com/bft-labs/airship/internal/adapters/radio"
	"github.com/bft-labs/airship/internal/adapters/store"
	"github.com/bft-labs/airship/internal/cliconfig"
	"github.com/bft-labs/airship/internal/configstore"
	"github.com/bft-labs/airship/pkg/airship"
	"github.com/bft-labs/airship/pkg/log"
	"github.com/bft-labs/airship/plugins/inbox"
)

const helpDescription = `
Run an air quality sensor node: join the network, keep time from network
time, and send temperature, humidity and particulate readings once per slot.

Highlights:
  - Remote configuration through downlink commands, persisted across restarts.
  - Runs simulated on any host, or on an I2C EEPROM and DS3231 clock on Linux.
  - Configure via file, env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  airship --dev-eui 70b3d57ed0000001 --join-eui 0000000000000000
  airship --config $HOME/.airship/config.toml --cycles 3
  airship --store eeprom --clock rtc --i2c-device /dev/i2c-1 --radio http --bridge-url http://gw:8080
  airship downlink send-interval 10
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootLog, _ := cliconfig.Logger("info")

	root := &cobra.Command{
		Use:     "airship",
		Short:   "Run an air quality sensor node",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.airship/config.toml)")
	root.PersistentFlags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory for the store image and inbox (default: $HOME/.airship)")
	root.PersistentFlags().StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "store image path (default: <state-dir>/eeprom.bin)")
	root.PersistentFlags().StringVar(&cfg.Store, "store", cfg.Store, "store backend: file, memory or eeprom")
	root.PersistentFlags().StringVar(&cfg.I2CDevice, "i2c-device", cfg.I2CDevice, "i2c-dev node for eeprom and rtc backends")

	root.Flags().StringVar(&cfg.Clock, "clock", cfg.Clock, "clock backend: software or rtc")
	root.Flags().StringVar(&cfg.Radio, "radio", cfg.Radio, "radio backend: stub or http")
	root.Flags().StringVar(&cfg.BridgeURL, "bridge-url", cfg.BridgeURL, "network server bridge URL for the http radio")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "bridge API key")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")

	root.Flags().StringVar(&cfg.DevEUI, "dev-eui", cfg.DevEUI, "device EUI (hex)")
	root.Flags().StringVar(&cfg.JoinEUI, "join-eui", cfg.JoinEUI, "join EUI (hex)")
	root.Flags().StringVar(&cfg.AppKey, "app-key", cfg.AppKey, "application key (hex)")

	root.Flags().DurationVar(&cfg.TimezoneOffset, "tz-offset", cfg.TimezoneOffset, "offset added to network time")
	root.Flags().IntVar(&cfg.Cycles, "cycles", cfg.Cycles, "transmit cycles to run before exiting (0 runs forever)")
	root.Flags().BoolVar(&cfg.Inbox, "inbox", cfg.Inbox, "queue downlinks dropped into <state-dir>/inbox")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := root.Flags().MarkHidden("auth-key"); err != nil {
		bootLog.Info().Err(err).Msg("failed to hide auth-key flag")
	}

	root.AddCommand(
		newInspectCmd(&cfg, &cfgPath),
		newDecodeCmd(),
		newDownlinkCmd(&cfg, &cfgPath),
	)

	if err := root.Execute(); err != nil {
		bootLog.Error().Err(err).Msg("airship")
		os.Exit(1)
	}
}

// loadConfig layers the config file and AIRSHIP_* environment under the
// flags set on cmd.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	return cliconfig.ApplyEnvConfig(cfg, changed)
}

func run(cfg cliconfig.Config) error {
	zl, err := cliconfig.Logger(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg := cfg
	if logCfg.AuthKey != "" {
		logCfg.AuthKey = "*****"
	}
	if logCfg.AppKey != "" {
		logCfg.AppKey = "*****"
	}
	zl.Info().Interface("config", logCfg).Msg("configuration")

	logger := log.NewZerologAdapterWithLogger(zl)

	opts, closeBus, err := hardwareOptions(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBus()

	opts = append(opts, airship.WithLogger(logger))
	if cfg.Inbox {
		opts = append(opts, inbox.WithInbox(inbox.DefaultConfig()))
	}

	st, err := airship.New(airship.Config{
		StateDir:       cfg.StateDir,
		DevEUI:         cfg.DevEUI,
		JoinEUI:        cfg.JoinEUI,
		AppKey:         cfg.AppKey,
		TimezoneOffset: cfg.TimezoneOffset,
		Cycles:         cfg.Cycles,
		SensorSeed:     1,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create station: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := st.Start(ctx); err != nil {
		return fmt.Errorf("start station: %w", err)
	}

	select {
	case <-sigCh:
		zl.Info().Msg("received signal, stopping...")
	case <-st.Done():
		if st.Status() == airship.StateCrashed {
			zl.Error().Msg("station crashed")
			return st.Err()
		}
		snap := st.Snapshot()
		zl.Info().Int("cycles", snap.Cycles).Uint32("next_slot", snap.State.NextSlotEpoch).Msg("station finished")
		return nil
	}

	if err := st.Stop(); err != nil && !errors.Is(err, airship.ErrNotRunning) {
		return fmt.Errorf("stop station: %w", err)
	}
	return nil
}

// hardwareOptions builds the store, clock and radio selected by cfg. The
// returned func closes the I2C bus if one was opened.
func hardwareOptions(cfg cliconfig.Config, logger log.Logger) ([]airship.Option, func(), error) {
	var (
		opts []airship.Option
		bus  *i2c.Bus
	)
	closeBus := func() {
		if bus != nil {
			_ = bus.Close()
		}
	}
	fail := func(err error) ([]airship.Option, func(), error) {
		closeBus()
		return nil, nil, err
	}
	openBus := func() (*i2c.Bus, error) {
		if bus != nil {
			return bus, nil
		}
		b, err := i2c.Open(cfg.I2CDevice)
		if err != nil {
			return nil, err
		}
		bus = b
		return bus, nil
	}

	switch cfg.Store {
	case cliconfig.StoreFile:
		f, err := store.OpenFile(cfg.StorePath, configstore.StoreSize)
		if err != nil {
			return fail(fmt.Errorf("open store: %w", err))
		}
		opts = append(opts, airship.WithStore(f))
	case cliconfig.StoreMemory:
		opts = append(opts, airship.WithStore(store.NewMemory(configstore.StoreSize)))
	case cliconfig.StoreEEPROM:
		b, err := openBus()
		if err != nil {
			return fail(err)
		}
		opts = append(opts, airship.WithStore(store.NewEEPROM(b, configstore.StoreSize)))
	}

	if cfg.Clock == cliconfig.ClockRTC {
		b, err := openBus()
		if err != nil {
			return fail(err)
		}
		rtc, err := clock.NewRTC(b, logger)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, airship.WithClock(rtc))
	}

	if cfg.Radio == cliconfig.RadioHTTP {
		opts = append(opts, airship.WithRadio(radio.NewHTTP(
			&http.Client{Timeout: cfg.HTTPTimeout},
			radio.HTTPConfig{
				ServiceURL: cfg.BridgeURL,
				AuthKey:    cfg.AuthKey,
				Identity:   cfg.Identity,
				Hostname:   hostname(),
			},
			logger,
		)))
	}

	return opts, closeBus, nil
}

// hostname returns the current hostname.
func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
