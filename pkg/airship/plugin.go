package airship

import (
	"context"

	"github.com/bft-labs/airship/pkg/log"
)

// Plugin extends a Station with work that runs beside the node loop.
type Plugin interface {
	// Name returns a unique identifier for the plugin.
	Name() string

	// Initialize is called on Start, before the node boots. ctx is canceled
	// when the station stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called on Stop, in reverse registration order.
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin gets to work with.
type PluginConfig struct {
	StateDir string
	RunID    string
	Logger   log.Logger

	// Downlinks queues frames for the next receive window. Nil when the
	// radio cannot accept injected downlinks.
	Downlinks DownlinkQueue
}
