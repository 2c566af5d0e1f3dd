package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration(true)

	if cfg.SendIntervalMinutes != 60 {
		t.Errorf("SendIntervalMinutes = %d, want 60", cfg.SendIntervalMinutes)
	}
	if cfg.CleanIntervalDays != 7 || cfg.ResyncIntervalDays != 7 {
		t.Errorf("clean/resync = %d/%d, want 7/7", cfg.CleanIntervalDays, cfg.ResyncIntervalDays)
	}
	if cfg.StabilizationDelayMinutes != 5 || !cfg.StopAfterReadout {
		t.Errorf("stabilization = %d stop = %v, want 5 true", cfg.StabilizationDelayMinutes, cfg.StopAfterReadout)
	}
	if cfg.OverrideTimeSync || cfg.AllowDeepSleep {
		t.Errorf("override/deep sleep = %v/%v, want false/false", cfg.OverrideTimeSync, cfg.AllowDeepSleep)
	}
	if cfg.Version != ConfigVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, ConfigVersion)
	}
	if cfg.SlotSeconds() != 3600 || cfg.SlotDuration() != time.Hour {
		t.Errorf("slot = %d s / %v", cfg.SlotSeconds(), cfg.SlotDuration())
	}
	if cfg.ResyncSeconds() != 7*86400 {
		t.Errorf("ResyncSeconds = %d", cfg.ResyncSeconds())
	}
}

func TestConfiguration_RestrictToClock(t *testing.T) {
	tests := []struct {
		name        string
		allow       bool
		hardware    bool
		wantAllow   bool
		wantChanged bool
	}{
		{"software clock clears deep sleep", true, false, false, true},
		{"hardware clock keeps deep sleep", true, true, true, false},
		{"already disabled", false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration(true)
			cfg.AllowDeepSleep = tt.allow
			changed := cfg.RestrictToClock(tt.hardware)
			if changed != tt.wantChanged || cfg.AllowDeepSleep != tt.wantAllow {
				t.Errorf("changed=%v allow=%v, want %v %v", changed, cfg.AllowDeepSleep, tt.wantChanged, tt.wantAllow)
			}
		})
	}
}

func TestConfiguration_ClampStabilization(t *testing.T) {
	cfg := DefaultConfiguration(false)
	cfg.SendIntervalMinutes = 5
	cfg.StabilizationDelayMinutes = 30
	if !cfg.ClampStabilization() {
		t.Fatal("ClampStabilization() = false, want true")
	}
	if cfg.StabilizationDelayMinutes != 5 {
		t.Errorf("StabilizationDelayMinutes = %d, want 5", cfg.StabilizationDelayMinutes)
	}
	if cfg.ClampStabilization() {
		t.Error("second ClampStabilization() = true, want false")
	}
}

func TestParseIdentity(t *testing.T) {
	id, err := ParseIdentity("70:B3:D5:7E:D0:05:A1:B2", "0000000000000001", "")
	if err != nil {
		t.Fatalf("ParseIdentity: %v", err)
	}
	if id.DevEUI != [8]byte{0x70, 0xb3, 0xd5, 0x7e, 0xd0, 0x05, 0xa1, 0xb2} {
		t.Errorf("DevEUI = % x", id.DevEUI)
	}
	if id.JoinEUI[7] != 1 {
		t.Errorf("JoinEUI = % x", id.JoinEUI)
	}
	if id.String() != "70b3d57ed005a1b2" {
		t.Errorf("String() = %s", id.String())
	}

	for _, tc := range [][3]string{
		{"70b3", "0000000000000001", ""},
		{"zz", "0000000000000001", ""},
		{"70b3d57ed005a1b2", "0000000000000001", "0102"},
	} {
		if _, err := ParseIdentity(tc[0], tc[1], tc[2]); !errors.Is(err, ErrInvalidIdentity) {
			t.Errorf("ParseIdentity(%q, %q, %q) err = %v, want ErrInvalidIdentity", tc[0], tc[1], tc[2], err)
		}
	}
}
