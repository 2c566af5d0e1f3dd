package sensors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/pkg/codec"
)

func TestSimulated_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, b := NewSimulated(7), NewSimulated(7)

	wa, _ := a.ReadWeather(ctx)
	wb, _ := b.ReadWeather(ctx)
	if wa != wb {
		t.Errorf("same seed gave %+v and %+v", wa, wb)
	}
	if wa.Temperature < 12 || wa.Temperature > 28 || wa.Humidity < 35 || wa.Humidity > 85 {
		t.Errorf("weather out of range: %+v", wa)
	}
}

func TestSimulated_ParticulateLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	s := NewSimulated(1)
	s.now = func() time.Time { return now }

	if _, err := s.ReadParticulate(ctx); !errors.Is(err, domain.ErrSensorNotReady) {
		t.Errorf("read while stopped = %v, want ErrSensorNotReady", err)
	}

	_ = s.StartParticulate(ctx)
	if ready, _ := s.ParticulateReady(ctx); ready {
		t.Error("ready before warm-up")
	}
	now = now.Add(DefaultWarmup)
	if ready, _ := s.ParticulateReady(ctx); !ready {
		t.Error("not ready after warm-up")
	}

	p, err := s.ReadParticulate(ctx)
	if err != nil {
		t.Fatalf("ReadParticulate: %v", err)
	}
	if !(p.MassPM1_0 <= p.MassPM2_5 && p.MassPM2_5 <= p.MassPM4_0 && p.MassPM4_0 <= p.MassPM10) {
		t.Errorf("mass concentrations not cumulative: %+v", p)
	}
	frame := codec.EncodeTelemetry(codec.Telemetry{Particulate: p})
	if len(frame) != codec.FrameSize {
		t.Errorf("frame size = %d", len(frame))
	}

	_ = s.StopParticulate(ctx)
	if ready, _ := s.ParticulateReady(ctx); ready {
		t.Error("ready after stop")
	}
}

func TestSimulated_CleaningInterval(t *testing.T) {
	s := NewSimulated(1)
	if s.CleaningInterval() != 7 {
		t.Errorf("default cleaning interval = %d", s.CleaningInterval())
	}
	_ = s.SetCleaningInterval(context.Background(), 3)
	if s.CleaningInterval() != 3 {
		t.Errorf("cleaning interval = %d, want 3", s.CleaningInterval())
	}
}
