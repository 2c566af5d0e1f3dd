package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DeviceIdentity is the radio credential set provisioned into a node.
type DeviceIdentity struct {
	DevEUI  [8]byte
	JoinEUI [8]byte
	AppKey  [16]byte
}

// ParseIdentity decodes hex credentials. Separators ':' and '-' are ignored.
func ParseIdentity(devEUI, joinEUI, appKey string) (DeviceIdentity, error) {
	var id DeviceIdentity
	if err := decodeHex("dev-eui", devEUI, id.DevEUI[:]); err != nil {
		return id, err
	}
	if err := decodeHex("join-eui", joinEUI, id.JoinEUI[:]); err != nil {
		return id, err
	}
	if appKey != "" {
		if err := decodeHex("app-key", appKey, id.AppKey[:]); err != nil {
			return id, err
		}
	}
	return id, nil
}

func decodeHex(name, s string, dst []byte) error {
	s = strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidIdentity, name, err)
	}
	if len(b) != len(dst) {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrInvalidIdentity, name, len(b), len(dst))
	}
	copy(dst, b)
	return nil
}

// String returns the DevEUI in hex, which is how nodes are named in logs.
func (id DeviceIdentity) String() string {
	return hex.EncodeToString(id.DevEUI[:])
}
