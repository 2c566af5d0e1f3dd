package configstore

import (
	"errors"
	"io"
	"testing"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/pkg/log"
)

// memStore is an erased in-memory byte store that records writes.
type memStore struct {
	buf      []byte
	writes   []int64
	failRead bool
}

func newMemStore() *memStore {
	b := make([]byte, StoreSize)
	for i := range b {
		b[i] = 0xFF
	}
	return &memStore{buf: b}
}

func (m *memStore) ReadAt(p []byte, off int64) (int, error) {
	if m.failRead {
		return 0, errors.New("bus error")
	}
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	return copy(p, m.buf[off:]), nil
}

func (m *memStore) WriteAt(p []byte, off int64) (int, error) {
	m.writes = append(m.writes, off)
	return copy(m.buf[off:], p), nil
}

func (m *memStore) Size() int64 { return int64(len(m.buf)) }

func TestSchema_VersionFirstAndDisjoint(t *testing.T) {
	if Schema[0].Name != FieldVersion.Name {
		t.Fatalf("Schema[0] = %s, want version tag", Schema[0].Name)
	}
	all := append(append([]Field{}, Schema...), FieldDevEUI, FieldJoinEUI)
	used := map[int64]string{}
	for _, f := range all {
		for off := f.Offset; off < f.Offset+int64(f.Width); off++ {
			if prev, ok := used[off]; ok {
				t.Errorf("offset %d used by %s and %s", off, prev, f.Name)
			}
			used[off] = f.Name
		}
	}
}

func TestStore_LoadErasedMigratesToDefaults(t *testing.T) {
	mem := newMemStore()
	s := New(mem, log.NewNoopLogger())
	defaults := domain.DefaultConfiguration(false)

	cfg, migrated, err := s.Load(defaults)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !migrated {
		t.Error("migrated = false, want true")
	}
	if cfg != defaults {
		t.Errorf("cfg = %+v, want %+v", cfg, defaults)
	}
	if len(mem.writes) != len(Schema) {
		t.Errorf("writes = %d, want %d", len(mem.writes), len(Schema))
	}
	if mem.buf[200] != domain.ConfigVersion {
		t.Errorf("version byte = %d, want %d", mem.buf[200], domain.ConfigVersion)
	}
	if mem.buf[201] != 60 || mem.buf[202] != 0 {
		t.Errorf("interval bytes = %d %d, want 60 0", mem.buf[201], mem.buf[202])
	}
}

func TestStore_LoadVersionMismatchResetsFields(t *testing.T) {
	mem := newMemStore()
	s := New(mem, log.NewNoopLogger())

	stale := domain.DefaultConfiguration(false)
	stale.SendIntervalMinutes = 15
	if err := s.Save(stale); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mem.buf[200] = domain.ConfigVersion + 1
	mem.writes = nil

	cfg, migrated, err := s.Load(domain.DefaultConfiguration(false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !migrated || cfg.SendIntervalMinutes != domain.DefaultSendIntervalMinutes {
		t.Errorf("migrated=%v interval=%d, want true %d", migrated, cfg.SendIntervalMinutes, domain.DefaultSendIntervalMinutes)
	}
	if len(mem.writes) == 0 {
		t.Error("defaults were not written back")
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	mem := newMemStore()
	s := New(mem, log.NewNoopLogger())

	want := domain.Configuration{
		SendIntervalMinutes:       300,
		CleanIntervalDays:         3,
		StabilizationDelayMinutes: 4,
		StopAfterReadout:          false,
		ResyncIntervalDays:        2,
		OverrideTimeSync:          true,
		AllowDeepSleep:            true,
		Version:                   domain.ConfigVersion,
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, migrated, err := s.Load(domain.DefaultConfiguration(true))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if migrated {
		t.Error("migrated = true, want false")
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestStore_SaveFieldsWritesOnlyNamedFields(t *testing.T) {
	mem := newMemStore()
	s := New(mem, log.NewNoopLogger())

	cfg := domain.DefaultConfiguration(false)
	cfg.OverrideTimeSync = true
	if err := s.SaveFields(cfg, FieldOverrideTimeSync); err != nil {
		t.Fatalf("SaveFields: %v", err)
	}
	if len(mem.writes) != 1 || mem.writes[0] != FieldOverrideTimeSync.Offset {
		t.Errorf("writes = %v, want [%d]", mem.writes, FieldOverrideTimeSync.Offset)
	}
	if mem.buf[207] != 1 {
		t.Errorf("override byte = %d, want 1", mem.buf[207])
	}
	if mem.buf[200] != 0xFF {
		t.Error("version tag was touched")
	}

	if err := s.SaveFields(cfg, FieldDevEUI); err == nil {
		t.Error("SaveFields(FieldDevEUI) succeeded, want error")
	}
}

func TestStore_Clear(t *testing.T) {
	mem := newMemStore()
	s := New(mem, log.NewNoopLogger())
	if err := s.Save(domain.DefaultConfiguration(false)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mem.buf[10] = 0x42

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for i, b := range mem.buf {
		if b != 0xFF {
			t.Fatalf("byte %d = %#x after Clear, want 0xff", i, b)
		}
	}
}

func TestStore_ReconcileIdentity(t *testing.T) {
	mem := newMemStore()
	s := New(mem, log.NewNoopLogger())
	id := domain.DeviceIdentity{
		DevEUI:  [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
		JoinEUI: [8]byte{0, 0, 0, 0, 0, 0, 0, 1},
	}

	changed, err := s.ReconcileIdentity(id)
	if err != nil {
		t.Fatalf("ReconcileIdentity: %v", err)
	}
	if !changed {
		t.Error("first reconcile changed = false, want true")
	}

	// a matching identity leaves the store alone
	if err := s.Save(domain.DefaultConfiguration(false)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mem.buf[0] = 0x11
	changed, err = s.ReconcileIdentity(id)
	if err != nil || changed {
		t.Fatalf("matching reconcile = %v, %v; want false, nil", changed, err)
	}
	if mem.buf[0] != 0x11 {
		t.Error("session cache was cleared for a matching identity")
	}

	// re-provisioned keys wipe the session and the configuration
	id.DevEUI[7] = 9
	changed, err = s.ReconcileIdentity(id)
	if err != nil || !changed {
		t.Fatalf("changed reconcile = %v, %v; want true, nil", changed, err)
	}
	if mem.buf[0] != 0xFF || mem.buf[200] != 0xFF {
		t.Error("store was not cleared")
	}
	snap, err := s.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if snap.DevEUI != id.DevEUI || snap.JoinEUI != id.JoinEUI {
		t.Errorf("stored identity = % x / % x", snap.DevEUI, snap.JoinEUI)
	}
	if snap.Current {
		t.Error("Current = true after clear")
	}
}

func TestStore_ReadErrorsAreWrapped(t *testing.T) {
	mem := newMemStore()
	mem.failRead = true
	s := New(mem, log.NewNoopLogger())

	if _, _, err := s.Load(domain.DefaultConfiguration(false)); err == nil {
		t.Error("Load succeeded on failing store")
	}
	if _, err := s.Peek(); err == nil {
		t.Error("Peek succeeded on failing store")
	}
}
