package clock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/airship/pkg/log"
)

type manualTime struct {
	t time.Time
}

func (m *manualTime) now() time.Time { return m.t }

func TestSoftware_UnsetReadsZero(t *testing.T) {
	c := NewSoftware()
	if c.Now() != 0 || c.Valid() {
		t.Errorf("unset clock Now=%d Valid=%v, want 0 false", c.Now(), c.Valid())
	}
	if c.BatteryBacked() {
		t.Error("software clock reports battery backed")
	}
}

func TestSoftware_Advances(t *testing.T) {
	mt := &manualTime{t: time.Unix(1000, 0)}
	c := NewSoftwareWithSource(mt.now)

	if err := c.Set(1_700_000_000); err != nil {
		t.Fatal(err)
	}
	mt.t = mt.t.Add(90*time.Second + 500*time.Millisecond)

	if got := c.Now(); got != 1_700_000_090 {
		t.Errorf("Now = %d, want 1700000090", got)
	}
	if !c.Valid() {
		t.Error("Valid = false after Set")
	}
}

// fakeDS3231 is a register file answering register-addressed reads and
// writes.
type fakeDS3231 struct {
	mu   sync.Mutex
	regs [0x13]byte
	fail bool
}

func (f *fakeDS3231) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("nack")
	}
	reg := w[0]
	if len(r) > 0 {
		copy(r, f.regs[reg:])
		return nil
	}
	copy(f.regs[reg:], w[1:])
	return nil
}

func TestRTC_SetAndRead(t *testing.T) {
	bus := &fakeDS3231{}
	bus.regs[0x0F] = 1 << 7 // oscillator stopped
	bus.regs[0x0E] = 1 << 7 // oscillator disabled

	c, err := NewRTC(bus, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}
	if bus.regs[0x0E]&(1<<7) != 0 {
		t.Error("oscillator not started")
	}
	if c.Valid() {
		t.Error("Valid = true with oscillator-stop flag set")
	}

	epoch := uint32(time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC).Unix())
	if err := c.Set(epoch); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !c.Valid() {
		t.Error("Valid = false after Set")
	}
	if got := c.Now(); got != epoch {
		t.Errorf("Now = %d, want %d", got, epoch)
	}
	if !c.BatteryBacked() {
		t.Error("rtc not battery backed")
	}
}

func TestRTC_ReadErrorIsZero(t *testing.T) {
	bus := &fakeDS3231{}
	c, err := NewRTC(bus, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("NewRTC: %v", err)
	}
	bus.fail = true
	if got := c.Now(); got != 0 {
		t.Errorf("Now = %d on bus error, want 0", got)
	}
	if c.Valid() {
		t.Error("Valid = true on bus error")
	}
}

func TestRTC_Temperature(t *testing.T) {
	bus := &fakeDS3231{}
	bus.regs[0x11] = 25
	bus.regs[0x12] = 0x40 // +0.25
	c, err := NewRTC(bus, log.NewNoopLogger())
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Temperature()
	if err != nil {
		t.Fatalf("Temperature: %v", err)
	}
	if got != 25.25 {
		t.Errorf("Temperature = %v, want 25.25", got)
	}
}
