package domain

import "errors"

// Domain errors can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when host configuration validation fails.
	ErrInvalidConfig = errors.New("airship: invalid configuration")

	// ErrInvalidIdentity is returned when device credentials have the wrong length or encoding.
	ErrInvalidIdentity = errors.New("airship: invalid device identity")

	// ErrNotJoined is returned by a radio that could not join the network.
	ErrNotJoined = errors.New("airship: not joined")

	// ErrNoTimeReply is returned by a radio whose time request got no answer.
	ErrNoTimeReply = errors.New("airship: no network time reply")

	// ErrSensorNotReady is returned when a sensor has no fresh measurement.
	ErrSensorNotReady = errors.New("airship: sensor not ready")
)
