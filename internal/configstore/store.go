package configstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/log"
)

// Store persists the node configuration and identity into a byte store
// using the fixed layout in Schema.
//
// Fields are written one at a time with no ordering guarantee. A power loss
// in the middle of Save can leave older field values behind a current
// version tag; Load trusts the tag.
type Store struct {
	dev    ports.ByteStore
	logger log.Logger
}

// New creates a Store over dev.
func New(dev ports.ByteStore, logger log.Logger) *Store {
	return &Store{dev: dev, logger: logger}
}

// Load reads the configuration. When the stored version tag differs from
// domain.ConfigVersion the defaults are written back and returned, and
// migrated is true.
func (s *Store) Load(defaults domain.Configuration) (cfg domain.Configuration, migrated bool, err error) {
	tag, err := s.read(FieldVersion)
	if err != nil {
		return defaults, false, err
	}

	if tag[0] != domain.ConfigVersion {
		s.logger.Warn("stored configuration version mismatch, restoring defaults",
			log.Int("stored", int(tag[0])),
			log.Int("expected", int(domain.ConfigVersion)),
		)
		if err := s.Save(defaults); err != nil {
			return defaults, true, err
		}
		defaults.Version = domain.ConfigVersion
		return defaults, true, nil
	}

	for _, f := range Schema {
		b, err := s.read(f)
		if err != nil {
			return defaults, false, err
		}
		f.set(&cfg, b)
	}
	return cfg, false, nil
}

// Save writes every configuration field.
func (s *Store) Save(cfg domain.Configuration) error {
	return s.SaveFields(cfg, Schema...)
}

// SaveFields writes only the given fields of cfg.
func (s *Store) SaveFields(cfg domain.Configuration, fields ...Field) error {
	for _, f := range fields {
		if f.get == nil {
			return fmt.Errorf("configstore: %s is not a configuration field", f.Name)
		}
		if err := s.write(f, f.get(cfg)); err != nil {
			return err
		}
	}
	return nil
}

// Clear overwrites the whole store with the erase value. This also drops
// any radio session cached below the configuration block.
func (s *Store) Clear() error {
	erased := bytes.Repeat([]byte{ports.EraseValue}, int(s.dev.Size()))
	if _, err := s.dev.WriteAt(erased, 0); err != nil {
		return fmt.Errorf("configstore: clear: %w", err)
	}
	return nil
}

// SaveIdentity writes the identity fields.
func (s *Store) SaveIdentity(id domain.DeviceIdentity) error {
	if err := s.write(FieldDevEUI, id.DevEUI[:]); err != nil {
		return err
	}
	return s.write(FieldJoinEUI, id.JoinEUI[:])
}

// ReconcileIdentity compares the stored identity with id. On any difference
// the store is cleared and id is written, which forces a fresh join.
func (s *Store) ReconcileIdentity(id domain.DeviceIdentity) (changed bool, err error) {
	dev, err := s.read(FieldDevEUI)
	if err != nil {
		return false, err
	}
	join, err := s.read(FieldJoinEUI)
	if err != nil {
		return false, err
	}
	if bytes.Equal(dev, id.DevEUI[:]) && bytes.Equal(join, id.JoinEUI[:]) {
		return false, nil
	}

	s.logger.Warn("device identity changed, clearing persisted session",
		log.Hex("stored_dev_eui", dev),
		log.Hex("dev_eui", id.DevEUI[:]),
	)
	if err := s.Clear(); err != nil {
		return true, err
	}
	return true, s.SaveIdentity(id)
}

// Snapshot is the raw persisted state, as read without migration.
type Snapshot struct {
	Config  domain.Configuration
	Current bool
	DevEUI  [8]byte
	JoinEUI [8]byte
}

// Peek reads the persisted state without repairing it.
func (s *Store) Peek() (Snapshot, error) {
	var snap Snapshot
	for _, f := range Schema {
		b, err := s.read(f)
		if err != nil {
			return snap, err
		}
		f.set(&snap.Config, b)
	}
	snap.Current = snap.Config.Version == domain.ConfigVersion

	dev, err := s.read(FieldDevEUI)
	if err != nil {
		return snap, err
	}
	join, err := s.read(FieldJoinEUI)
	if err != nil {
		return snap, err
	}
	copy(snap.DevEUI[:], dev)
	copy(snap.JoinEUI[:], join)
	return snap, nil
}

func (s *Store) read(f Field) ([]byte, error) {
	b := make([]byte, f.Width)
	n, err := s.dev.ReadAt(b, f.Offset)
	if n == len(b) && (err == nil || errors.Is(err, io.EOF)) {
		return b, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("configstore: read %s: %w", f.Name, err)
}

func (s *Store) write(f Field, b []byte) error {
	if _, err := s.dev.WriteAt(b, f.Offset); err != nil {
		return fmt.Errorf("configstore: write %s: %w", f.Name, err)
	}
	return nil
}
