package codec

import (
	"encoding/binary"
	"fmt"
)

// StatusReportSize is the length of a status report uplink.
const StatusReportSize = 12

// StatusReport is the configuration snapshot a node sends on request and
// after every remote configuration change.
//
//	offset  width  field
//	0       2      send interval, minutes (little-endian)
//	2       1      cleaning interval, days
//	3       1      stabilization delay, minutes
//	4       1      stop after readout
//	5       1      resync interval, days
//	6       1      override time sync
//	7       1      allow deep sleep
//	8       4      node clock epoch (little-endian)
type StatusReport struct {
	SendIntervalMinutes       uint16
	CleanIntervalDays         uint8
	StabilizationDelayMinutes uint8
	StopAfterReadout          bool
	ResyncIntervalDays        uint8
	OverrideTimeSync          bool
	AllowDeepSleep            bool
	Timestamp                 uint32
}

// MarshalBinary encodes r into its 12-byte wire form.
func (r StatusReport) MarshalBinary() ([]byte, error) {
	b := make([]byte, StatusReportSize)
	binary.LittleEndian.PutUint16(b[0:], r.SendIntervalMinutes)
	b[2] = r.CleanIntervalDays
	b[3] = r.StabilizationDelayMinutes
	b[4] = boolByte(r.StopAfterReadout)
	b[5] = r.ResyncIntervalDays
	b[6] = boolByte(r.OverrideTimeSync)
	b[7] = boolByte(r.AllowDeepSleep)
	binary.LittleEndian.PutUint32(b[8:], r.Timestamp)
	return b, nil
}

// UnmarshalBinary decodes a 12-byte status report.
func (r *StatusReport) UnmarshalBinary(b []byte) error {
	if len(b) < StatusReportSize {
		return fmt.Errorf("%w: status report is %d bytes, want %d", ErrShortPayload, len(b), StatusReportSize)
	}
	r.SendIntervalMinutes = binary.LittleEndian.Uint16(b[0:])
	r.CleanIntervalDays = b[2]
	r.StabilizationDelayMinutes = b[3]
	r.StopAfterReadout = b[4] != 0
	r.ResyncIntervalDays = b[5]
	r.OverrideTimeSync = b[6] != 0
	r.AllowDeepSleep = b[7] != 0
	r.Timestamp = binary.LittleEndian.Uint32(b[8:])
	return nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
