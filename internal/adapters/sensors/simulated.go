// Package sensors provides a simulated sensor suite for host runs.
package sensors

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/codec"
)

// DefaultWarmup is how long the particulate sensor needs after start before
// its first measurement.
const DefaultWarmup = time.Second

// Simulated produces deterministic pseudo-random weather and particulate
// readings. The particulate sensor reports ready only after it has been
// started and warmed up.
type Simulated struct {
	mu           sync.Mutex
	rng          *rand.Rand
	now          func() time.Time
	warmup       time.Duration
	running      bool
	startedAt    time.Time
	cleaningDays uint8
}

// NewSimulated creates a sensor suite seeded with seed.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{
		rng:          rand.New(rand.NewSource(seed)),
		now:          time.Now,
		warmup:       DefaultWarmup,
		cleaningDays: domain.DefaultCleanIntervalDays,
	}
}

// SetWarmup overrides the particulate warm-up time.
func (s *Simulated) SetWarmup(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warmup = d
}

// ReadWeather returns temperature in °C and relative humidity in %.
func (s *Simulated) ReadWeather(ctx context.Context) (codec.Weather, error) {
	if err := ctx.Err(); err != nil {
		return codec.Weather{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return codec.Weather{
		Temperature: s.between(12, 28),
		Humidity:    s.between(35, 85),
	}, nil
}

// ParticulateReady reports whether a measurement can be read.
func (s *Simulated) ParticulateReady(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.now().Sub(s.startedAt) >= s.warmup, nil
}

// ReadParticulate returns mass concentrations in µg/m³, number
// concentrations in #/cm³ and the typical particle size in µm.
func (s *Simulated) ReadParticulate(ctx context.Context) (codec.Particulate, error) {
	if err := ctx.Err(); err != nil {
		return codec.Particulate{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return codec.Particulate{}, domain.ErrSensorNotReady
	}

	pm1 := s.between(2, 12)
	pm25 := pm1 + s.between(0, 8)
	pm4 := pm25 + s.between(0, 4)
	pm10 := pm4 + s.between(0, 4)
	n05 := s.between(10, 40)
	n1 := n05 + s.between(0, 10)
	n25 := n1 + s.between(0, 3)
	n4 := n25 + s.between(0, 1)
	n10 := n4 + s.between(0, 1)

	return codec.Particulate{
		MassPM1_0:           pm1,
		MassPM2_5:           pm25,
		MassPM4_0:           pm4,
		MassPM10:            pm10,
		NumberPM0_5:         n05,
		NumberPM1_0:         n1,
		NumberPM2_5:         n25,
		NumberPM4_0:         n4,
		NumberPM10:          n10,
		TypicalParticleSize: s.between(0.3, 1.2),
	}, nil
}

// StartParticulate starts the fan and laser.
func (s *Simulated) StartParticulate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.running = true
		s.startedAt = s.now()
	}
	return nil
}

// StopParticulate stops the fan and laser.
func (s *Simulated) StopParticulate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// SetCleaningInterval sets the fan auto-clean period.
func (s *Simulated) SetCleaningInterval(ctx context.Context, days uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaningDays = days
	return nil
}

// CleaningInterval returns the configured auto-clean period in days.
func (s *Simulated) CleaningInterval() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleaningDays
}

func (s *Simulated) between(lo, hi float32) float32 {
	return lo + s.rng.Float32()*(hi-lo)
}

var _ ports.Sensors = (*Simulated)(nil)
