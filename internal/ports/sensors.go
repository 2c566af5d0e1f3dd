package ports

import (
	"context"

	"github.com/bft-labs/airship/pkg/codec"
)

// Sensors is the node's sensor suite.
type Sensors interface {
	ReadWeather(ctx context.Context) (codec.Weather, error)

	// ParticulateReady reports whether a fresh particulate measurement is available.
	ParticulateReady(ctx context.Context) (bool, error)
	ReadParticulate(ctx context.Context) (codec.Particulate, error)

	StartParticulate(ctx context.Context) error
	StopParticulate(ctx context.Context) error

	// SetCleaningInterval sets the particulate sensor's fan auto-clean period.
	SetCleaningInterval(ctx context.Context, days uint8) error
}
