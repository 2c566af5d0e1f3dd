package airship

import (
	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/pkg/lifecycle"
)

// Errors returned by the station. Use errors.Is to check them.
var (
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrInvalidIdentity = domain.ErrInvalidIdentity
	ErrNotJoined       = domain.ErrNotJoined
	ErrNoTimeReply     = domain.ErrNoTimeReply
	ErrSensorNotReady  = domain.ErrSensorNotReady

	ErrAlreadyRunning  = lifecycle.ErrAlreadyRunning
	ErrNotRunning      = lifecycle.ErrNotRunning
	ErrShutdownTimeout = lifecycle.ErrShutdownTimeout
)
