package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/airship/internal/domain"
)

// Backends selectable from the command line.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreEEPROM = "eeprom"

	ClockSoftware = "software"
	ClockRTC      = "rtc"

	RadioStub = "stub"
	RadioHTTP = "http"
)

// Defaults.
const (
	DefaultBridgeURL      = "http://localhost:8080"
	DefaultI2CDevice      = "/dev/i2c-1"
	DefaultTimezoneOffset = 2 * time.Hour
	StoreFileName         = "eeprom.bin"
)

// Config holds CLI configuration for airship.
type Config struct {
	StateDir  string
	StorePath string
	Store     string
	Clock     string
	I2CDevice string

	Radio       string
	BridgeURL   string
	AuthKey     string
	HTTPTimeout time.Duration

	DevEUI  string
	JoinEUI string
	AppKey  string

	TimezoneOffset time.Duration
	Cycles         int
	Inbox          bool
	LogLevel       string

	// Identity is decoded from the hex credentials by Validate.
	Identity domain.DeviceIdentity `json:"-"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Store:          StoreFile,
		Clock:          ClockSoftware,
		I2CDevice:      DefaultI2CDevice,
		Radio:          RadioStub,
		BridgeURL:      DefaultBridgeURL,
		AuthKey:        os.Getenv("AIRSHIP_AUTH_KEY"),
		HTTPTimeout:    15 * time.Second,
		TimezoneOffset: DefaultTimezoneOffset,
		Inbox:          true,
		LogLevel:       "info",
		StateDir:       "", // Derived from the home directory during Validate
	}
}

// DefaultStateDir returns ~/.airship if the user home directory is accessible.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".airship")
	}
	return ""
}

// ResolvePaths derives the state directory and store image path when unset.
func (c *Config) ResolvePaths() {
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
	if c.StorePath == "" && c.StateDir != "" {
		c.StorePath = filepath.Join(c.StateDir, StoreFileName)
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	c.ResolvePaths()
	if c.StateDir == "" && (c.Store == StoreFile || c.Inbox) {
		return fmt.Errorf("%w: state-dir is required", domain.ErrInvalidConfig)
	}

	switch c.Store {
	case StoreFile, StoreMemory, StoreEEPROM:
	default:
		return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidConfig, c.Store)
	}
	switch c.Clock {
	case ClockSoftware, ClockRTC:
	default:
		return fmt.Errorf("%w: unknown clock backend %q", domain.ErrInvalidConfig, c.Clock)
	}
	switch c.Radio {
	case RadioStub:
	case RadioHTTP:
		if c.BridgeURL == "" {
			return fmt.Errorf("%w: bridge-url is required for the http radio", domain.ErrInvalidConfig)
		}
		if c.HTTPTimeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown radio backend %q", domain.ErrInvalidConfig, c.Radio)
	}
	c.BridgeURL = strings.TrimSuffix(c.BridgeURL, "/")

	if c.Cycles < 0 {
		return fmt.Errorf("%w: cycles must not be negative", domain.ErrInvalidConfig)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if c.DevEUI == "" || c.JoinEUI == "" {
		return fmt.Errorf("%w: dev-eui and join-eui are required", domain.ErrInvalidConfig)
	}
	id, err := domain.ParseIdentity(c.DevEUI, c.JoinEUI, c.AppKey)
	if err != nil {
		return err
	}
	c.Identity = id
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
