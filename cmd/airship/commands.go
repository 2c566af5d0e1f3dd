package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/airship/internal/adapters/i2c"
	"github.com/bft-labs/airship/internal/adapters/store"
	"github.com/bft-labs/airship/internal/cliconfig"
	"github.com/bft-labs/airship/internal/configstore"
	"github.com/bft-labs/airship/internal/downlink"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/codec"
	"github.com/bft-labs/airship/pkg/log"
	"github.com/bft-labs/airship/plugins/inbox"
)

func newInspectCmd(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [image]",
		Short: "Print the configuration persisted in a store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			cfg.ResolvePaths()
			if len(args) == 1 {
				cfg.Store = cliconfig.StoreFile
				cfg.StorePath = args[0]
			}

			var dev ports.ByteStore
			switch cfg.Store {
			case cliconfig.StoreEEPROM:
				bus, err := i2c.Open(cfg.I2CDevice)
				if err != nil {
					return err
				}
				defer bus.Close()
				dev = store.NewEEPROM(bus, configstore.StoreSize)
			case cliconfig.StoreFile:
				if !cliconfig.FileExists(cfg.StorePath) {
					return fmt.Errorf("no store image at %s", cfg.StorePath)
				}
				f, err := store.OpenFile(cfg.StorePath, configstore.StoreSize)
				if err != nil {
					return err
				}
				dev = f
			default:
				return fmt.Errorf("store backend %q keeps nothing to inspect", cfg.Store)
			}

			snap, err := configstore.New(dev, log.NewNoopLogger()).Peek()
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func printSnapshot(w io.Writer, snap configstore.Snapshot) {
	c := snap.Config
	fmt.Fprintf(w, "version:              %d (current: %v)\n", c.Version, snap.Current)
	fmt.Fprintf(w, "dev eui:              %s\n", hex.EncodeToString(snap.DevEUI[:]))
	fmt.Fprintf(w, "join eui:             %s\n", hex.EncodeToString(snap.JoinEUI[:]))
	fmt.Fprintf(w, "send interval:        %d min\n", c.SendIntervalMinutes)
	fmt.Fprintf(w, "clean interval:       %d days\n", c.CleanIntervalDays)
	fmt.Fprintf(w, "stabilization delay:  %d min\n", c.StabilizationDelayMinutes)
	fmt.Fprintf(w, "stop after readout:   %v\n", c.StopAfterReadout)
	fmt.Fprintf(w, "resync interval:      %d days\n", c.ResyncIntervalDays)
	fmt.Fprintf(w, "override time sync:   %v\n", c.OverrideTimeSync)
	fmt.Fprintf(w, "allow deep sleep:     %v\n", c.AllowDeepSleep)
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode uplink payloads",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "telemetry <hex>",
			Short: "Decode a port 1 telemetry frame",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := decodeHexArg(args[0])
				if err != nil {
					return err
				}
				t, err := codec.DecodeTelemetry(b)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "temperature:   %.2f °C\n", t.Temperature)
				fmt.Fprintf(w, "humidity:      %.2f %%\n", t.Humidity)
				fmt.Fprintf(w, "pm1.0 mass:    %.2f µg/m³\n", t.MassPM1_0)
				fmt.Fprintf(w, "pm2.5 mass:    %.2f µg/m³\n", t.MassPM2_5)
				fmt.Fprintf(w, "pm4.0 mass:    %.2f µg/m³\n", t.MassPM4_0)
				fmt.Fprintf(w, "pm10 mass:     %.2f µg/m³\n", t.MassPM10)
				fmt.Fprintf(w, "pm0.5 count:   %.2f #/cm³\n", t.NumberPM0_5)
				fmt.Fprintf(w, "pm1.0 count:   %.2f #/cm³\n", t.NumberPM1_0)
				fmt.Fprintf(w, "pm2.5 count:   %.2f #/cm³\n", t.NumberPM2_5)
				fmt.Fprintf(w, "pm4.0 count:   %.2f #/cm³\n", t.NumberPM4_0)
				fmt.Fprintf(w, "pm10 count:    %.2f #/cm³\n", t.NumberPM10)
				fmt.Fprintf(w, "particle size: %.2f µm\n", t.TypicalParticleSize)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status <hex>",
			Short: "Decode a port 4 status report",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := decodeHexArg(args[0])
				if err != nil {
					return err
				}
				var r codec.StatusReport
				if err := r.UnmarshalBinary(b); err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "send interval:        %d min\n", r.SendIntervalMinutes)
				fmt.Fprintf(w, "clean interval:       %d days\n", r.CleanIntervalDays)
				fmt.Fprintf(w, "stabilization delay:  %d min\n", r.StabilizationDelayMinutes)
				fmt.Fprintf(w, "stop after readout:   %v\n", r.StopAfterReadout)
				fmt.Fprintf(w, "resync interval:      %d days\n", r.ResyncIntervalDays)
				fmt.Fprintf(w, "override time sync:   %v\n", r.OverrideTimeSync)
				fmt.Fprintf(w, "allow deep sleep:     %v\n", r.AllowDeepSleep)
				fmt.Fprintf(w, "node clock:           %d\n", r.Timestamp)
				return nil
			},
		},
	)
	return cmd
}

func decodeHexArg(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("payload is not hex: %w", err)
	}
	return b, nil
}

func newDownlinkCmd(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "downlink <command> [value]",
		Short: "Queue a configuration command for a running station",
		Long: "Encode a configuration command and drop it into the station inbox.\n\nCommands: " +
			strings.Join(downlink.CommandNames(), ", "),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			cfg.ResolvePaths()
			if cfg.StateDir == "" {
				return fmt.Errorf("state-dir is required")
			}

			c, err := downlink.ParseCommand(args[0])
			if err != nil {
				return err
			}
			value := uint64(1)
			if len(args) == 1 && c != downlink.CmdForceResync && c != downlink.CmdRequestReport {
				return fmt.Errorf("%s needs a value", c)
			}
			if len(args) == 2 {
				value, err = strconv.ParseUint(args[1], 10, 16)
				if err != nil {
					return fmt.Errorf("parse value: %w", err)
				}
			}
			dl, err := downlink.Encode(c, uint16(value))
			if err != nil {
				return err
			}
			path, err := inbox.WriteFile(filepath.Join(cfg.StateDir, inbox.DirName), dl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s (port %d, payload %x) in %s\n", c, dl.Port, dl.Data, path)
			return nil
		},
	}
}
