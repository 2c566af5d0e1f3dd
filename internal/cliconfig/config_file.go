package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	StateDir       string `toml:"state_dir"`
	StorePath      string `toml:"store_path"`
	Store          string `toml:"store"`
	Clock          string `toml:"clock"`
	I2CDevice      string `toml:"i2c_device"`
	Radio          string `toml:"radio"`
	BridgeURL      string `toml:"bridge_url"`
	AuthKey        string `toml:"auth_key"`
	HTTPTimeout    string `toml:"http_timeout"`
	DevEUI         string `toml:"dev_eui"`
	JoinEUI        string `toml:"join_eui"`
	AppKey         string `toml:"app_key"`
	TimezoneOffset string `toml:"tz_offset"`
	Cycles         int    `toml:"cycles"`
	Inbox          *bool  `toml:"inbox"`
	LogLevel       string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.airship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".airship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("store-path", fc.StorePath, &cfg.StorePath)
	s.setString("store", fc.Store, &cfg.Store)
	s.setString("clock", fc.Clock, &cfg.Clock)
	s.setString("i2c-device", fc.I2CDevice, &cfg.I2CDevice)
	s.setString("radio", fc.Radio, &cfg.Radio)
	s.setString("bridge-url", fc.BridgeURL, &cfg.BridgeURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("dev-eui", fc.DevEUI, &cfg.DevEUI)
	s.setString("join-eui", fc.JoinEUI, &cfg.JoinEUI)
	s.setString("app-key", fc.AppKey, &cfg.AppKey)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("tz-offset", fc.TimezoneOffset, &cfg.TimezoneOffset); err != nil {
		return err
	}

	s.setInt("cycles", fc.Cycles, &cfg.Cycles)
	s.setBool("inbox", fc.Inbox, &cfg.Inbox)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
