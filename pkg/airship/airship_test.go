package airship_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/airship/internal/adapters/radio"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/airship"
	"github.com/bft-labs/airship/pkg/log"
)

func testConfig() airship.Config {
	cfg := airship.DefaultConfig()
	cfg.DevEUI = "70b3d57ed0000001"
	cfg.JoinEUI = "0000000000000002"
	return cfg
}

type fakeClock struct {
	mu  sync.Mutex
	t   time.Duration
	set bool
}

func (c *fakeClock) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return 0
	}
	return uint32(c.t / time.Second)
}

func (c *fakeClock) Set(epoch uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = time.Duration(epoch) * time.Second
	c.set = true
	return nil
}

func (c *fakeClock) BatteryBacked() bool { return false }

func (c *fakeClock) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}

// instantTimer completes every wait immediately by moving the fake clock.
type instantTimer struct {
	clock *fakeClock
}

func (f *instantTimer) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.clock.mu.Lock()
	f.clock.t += d
	f.clock.mu.Unlock()
	return nil
}

func (f *instantTimer) SleepFor(ctx context.Context, d time.Duration) error {
	return f.Wait(ctx, d)
}

type recordingHandler struct {
	mu        sync.Mutex
	states    []airship.State
	uplinks   []airship.UplinkEvent
	downlinks []airship.DownlinkEvent
}

func (h *recordingHandler) OnStateChange(e airship.StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, e.Current)
}

func (h *recordingHandler) OnUplink(e airship.UplinkEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uplinks = append(h.uplinks, e)
}

func (h *recordingHandler) OnDownlink(e airship.DownlinkEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.downlinks = append(h.downlinks, e)
}

type fakePlugin struct {
	name    string
	initErr error
	cfg     airship.PluginConfig
	events  *[]string
}

func (p *fakePlugin) Name() string { return p.name }

func (p *fakePlugin) Initialize(ctx context.Context, cfg airship.PluginConfig) error {
	p.cfg = cfg
	*p.events = append(*p.events, "init:"+p.name)
	return p.initErr
}

func (p *fakePlugin) Shutdown(ctx context.Context) error {
	*p.events = append(*p.events, "shutdown:"+p.name)
	return nil
}

func waitDone(t *testing.T, st *airship.Station) {
	t.Helper()
	select {
	case <-st.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("station did not finish")
	}
}

func waitState(t *testing.T, st *airship.Station, want airship.State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for st.Status() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want %s", st.Status(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		edit func(*airship.Config)
		want error
	}{
		{"missing dev eui", func(c *airship.Config) { c.DevEUI = "" }, airship.ErrInvalidConfig},
		{"negative cycles", func(c *airship.Config) { c.Cycles = -1 }, airship.ErrInvalidConfig},
		{"short join eui", func(c *airship.Config) { c.JoinEUI = "0102" }, airship.ErrInvalidIdentity},
		{"bad app key", func(c *airship.Config) { c.AppKey = "zz" }, airship.ErrInvalidIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.edit(&cfg)
			if _, err := airship.New(cfg); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStation_RunsCyclesThenStops(t *testing.T) {
	clk := &fakeClock{}
	timer := &instantTimer{clock: clk}
	stub := radio.NewStub(log.NewNoopLogger())
	handler := &recordingHandler{}

	cfg := testConfig()
	cfg.Cycles = 2
	st, err := airship.New(cfg,
		airship.WithClock(clk),
		airship.WithWaiter(timer),
		airship.WithSleeper(timer),
		airship.WithRadio(stub),
		airship.WithEventHandler(handler),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, st)

	if got := st.Status(); got != airship.StateStopped {
		t.Fatalf("Status() = %s, want Stopped", got)
	}
	if err := st.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if got := st.Snapshot().Cycles; got != 2 {
		t.Errorf("Cycles = %d, want 2", got)
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	wantStates := []airship.State{airship.StateBooting, airship.StateRunning, airship.StateStopping, airship.StateStopped}
	if len(handler.states) != len(wantStates) {
		t.Fatalf("states = %v, want %v", handler.states, wantStates)
	}
	for i := range wantStates {
		if handler.states[i] != wantStates[i] {
			t.Errorf("states[%d] = %s, want %s", i, handler.states[i], wantStates[i])
		}
	}
	if len(handler.uplinks) != 2 {
		t.Fatalf("uplink events = %d, want 2", len(handler.uplinks))
	}
	for _, u := range handler.uplinks {
		if u.Port != ports.PortTelemetry || len(u.Payload) != 26 {
			t.Errorf("uplink = port %d len %d, want telemetry frame", u.Port, len(u.Payload))
		}
	}
}

func TestStation_DownlinkEvent(t *testing.T) {
	clk := &fakeClock{}
	timer := &instantTimer{clock: clk}
	stub := radio.NewStub(log.NewNoopLogger())
	stub.Enqueue(ports.Downlink{Port: 1, Data: []byte{0x00, 0x0A}})
	handler := &recordingHandler{}

	cfg := testConfig()
	cfg.Cycles = 1
	st, err := airship.New(cfg,
		airship.WithClock(clk),
		airship.WithWaiter(timer),
		airship.WithSleeper(timer),
		airship.WithRadio(stub),
		airship.WithEventHandler(handler),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, st)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.downlinks) != 1 || handler.downlinks[0].Port != 1 {
		t.Fatalf("downlinks = %+v, want one on port 1", handler.downlinks)
	}
	if got := st.Snapshot().Config.SendIntervalMinutes; got != 10 {
		t.Errorf("SendIntervalMinutes = %d, want 10", got)
	}
}

func TestStation_StopWhileRunning(t *testing.T) {
	st, err := airship.New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := st.Start(context.Background()); !errors.Is(err, airship.ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	waitState(t, st, airship.StateRunning)
	if err := st.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := st.Status(); got != airship.StateStopped {
		t.Errorf("Status() = %s, want Stopped", got)
	}
	if err := st.Stop(); !errors.Is(err, airship.ErrNotRunning) {
		t.Errorf("second Stop() error = %v, want ErrNotRunning", err)
	}
}

func TestStation_PluginLifecycle(t *testing.T) {
	var events []string
	first := &fakePlugin{name: "first", events: &events}
	second := &fakePlugin{name: "second", events: &events}

	cfg := testConfig()
	cfg.StateDir = t.TempDir()
	st, err := airship.New(cfg, airship.WithPlugin(first), airship.WithPlugin(second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := st.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	want := []string{"init:first", "init:second", "shutdown:second", "shutdown:first"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}
	if first.cfg.Downlinks == nil {
		t.Error("plugin got no downlink queue for the stub radio")
	}
	if first.cfg.StateDir != cfg.StateDir || first.cfg.RunID != st.RunID() {
		t.Errorf("plugin config = %+v", first.cfg)
	}
	if _, err := os.Stat(filepath.Join(cfg.StateDir, airship.StoreFile)); err != nil {
		t.Errorf("store image not created: %v", err)
	}
}

func TestStation_PluginInitFailure(t *testing.T) {
	var events []string
	boom := errors.New("boom")
	ok := &fakePlugin{name: "ok", events: &events}
	bad := &fakePlugin{name: "bad", initErr: boom, events: &events}

	st, err := airship.New(testConfig(), airship.WithPlugin(ok), airship.WithPlugin(bad))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Start(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Start() error = %v, want boom", err)
	}
	if got := st.Status(); got != airship.StateCrashed {
		t.Errorf("Status() = %s, want Crashed", got)
	}
	want := []string{"init:ok", "init:bad", "shutdown:ok"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}
}
