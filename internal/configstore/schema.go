package configstore

import (
	"encoding/binary"

	"github.com/bft-labs/airship/internal/domain"
)

// StoreSize is the addressable range the store expects. Bytes below the
// version tag are left to the radio session cache.
const StoreSize = 1024

// Field is one fixed-offset entry of the persisted layout.
type Field struct {
	Name   string
	Offset int64
	Width  int

	get func(domain.Configuration) []byte
	set func(*domain.Configuration, []byte)
}

// Configuration layout. Offsets are stable across versions.
var (
	FieldVersion = Field{
		Name: "config_version", Offset: 200, Width: 1,
		get: func(domain.Configuration) []byte { return []byte{domain.ConfigVersion} },
		set: func(c *domain.Configuration, b []byte) { c.Version = b[0] },
	}
	FieldSendInterval = Field{
		Name: "send_interval_minutes", Offset: 201, Width: 2,
		get: func(c domain.Configuration) []byte {
			return binary.LittleEndian.AppendUint16(nil, c.SendIntervalMinutes)
		},
		set: func(c *domain.Configuration, b []byte) { c.SendIntervalMinutes = binary.LittleEndian.Uint16(b) },
	}
	FieldCleanInterval = Field{
		Name: "clean_interval_days", Offset: 203, Width: 1,
		get: func(c domain.Configuration) []byte { return []byte{c.CleanIntervalDays} },
		set: func(c *domain.Configuration, b []byte) { c.CleanIntervalDays = b[0] },
	}
	FieldStabilizationDelay = Field{
		Name: "stabilization_delay_minutes", Offset: 204, Width: 1,
		get: func(c domain.Configuration) []byte { return []byte{c.StabilizationDelayMinutes} },
		set: func(c *domain.Configuration, b []byte) { c.StabilizationDelayMinutes = b[0] },
	}
	FieldStopAfterReadout = Field{
		Name: "stop_after_readout", Offset: 205, Width: 1,
		get: func(c domain.Configuration) []byte { return flag(c.StopAfterReadout) },
		set: func(c *domain.Configuration, b []byte) { c.StopAfterReadout = b[0] != 0 },
	}
	FieldResyncInterval = Field{
		Name: "resync_interval_days", Offset: 206, Width: 1,
		get: func(c domain.Configuration) []byte { return []byte{c.ResyncIntervalDays} },
		set: func(c *domain.Configuration, b []byte) { c.ResyncIntervalDays = b[0] },
	}
	FieldOverrideTimeSync = Field{
		Name: "override_time_sync", Offset: 207, Width: 1,
		get: func(c domain.Configuration) []byte { return flag(c.OverrideTimeSync) },
		set: func(c *domain.Configuration, b []byte) { c.OverrideTimeSync = b[0] != 0 },
	}
	FieldAllowDeepSleep = Field{
		Name: "allow_deep_sleep", Offset: 208, Width: 1,
		get: func(c domain.Configuration) []byte { return flag(c.AllowDeepSleep) },
		set: func(c *domain.Configuration, b []byte) { c.AllowDeepSleep = b[0] != 0 },
	}
)

// Identity layout, compared at boot to detect re-provisioning.
var (
	FieldDevEUI  = Field{Name: "dev_eui", Offset: 209, Width: 8}
	FieldJoinEUI = Field{Name: "join_eui", Offset: 217, Width: 8}
)

// Schema lists every configuration field, version tag first.
var Schema = []Field{
	FieldVersion,
	FieldSendInterval,
	FieldCleanInterval,
	FieldStabilizationDelay,
	FieldStopAfterReadout,
	FieldResyncInterval,
	FieldOverrideTimeSync,
	FieldAllowDeepSleep,
}

func flag(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}
