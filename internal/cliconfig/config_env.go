package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (AIRSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("state-dir", os.Getenv("AIRSHIP_STATE_DIR"), &cfg.StateDir)
	s.setString("store-path", os.Getenv("AIRSHIP_STORE_PATH"), &cfg.StorePath)
	s.setString("store", os.Getenv("AIRSHIP_STORE"), &cfg.Store)
	s.setString("clock", os.Getenv("AIRSHIP_CLOCK"), &cfg.Clock)
	s.setString("i2c-device", os.Getenv("AIRSHIP_I2C_DEVICE"), &cfg.I2CDevice)
	s.setString("radio", os.Getenv("AIRSHIP_RADIO"), &cfg.Radio)
	s.setString("bridge-url", os.Getenv("AIRSHIP_BRIDGE_URL"), &cfg.BridgeURL)
	s.setString("auth-key", os.Getenv("AIRSHIP_AUTH_KEY"), &cfg.AuthKey)
	s.setString("dev-eui", os.Getenv("AIRSHIP_DEV_EUI"), &cfg.DevEUI)
	s.setString("join-eui", os.Getenv("AIRSHIP_JOIN_EUI"), &cfg.JoinEUI)
	s.setString("app-key", os.Getenv("AIRSHIP_APP_KEY"), &cfg.AppKey)
	s.setString("log-level", os.Getenv("AIRSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("AIRSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("tz-offset", os.Getenv("AIRSHIP_TZ_OFFSET"), &cfg.TimezoneOffset); err != nil {
		return err
	}

	if err := s.setIntFromString("cycles", os.Getenv("AIRSHIP_CYCLES"), &cfg.Cycles); err != nil {
		return err
	}

	s.setBoolFromString("inbox", os.Getenv("AIRSHIP_INBOX"), &cfg.Inbox)

	return nil
}
