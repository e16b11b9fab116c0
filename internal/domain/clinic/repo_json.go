package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type jsonStore struct {
	path string
	log  zerolog.Logger
}

// NewJSONStore persists snapshots as a single JSON document at path.
func NewJSONStore(path string, logger zerolog.Logger) SnapshotStore {
	return &jsonStore{path: path, log: logger.With().Str("store", "json").Logger()}
}

func (s *jsonStore) Load(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Info().Str("path", s.path).Msg("no existing data file, starting fresh")
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	snap := NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.log.Info().
		Int("patients", len(snap.Patients)).
		Int("doctors", len(snap.Doctors)).
		Int("appointments", len(snap.Appointments)).
		Msg("loaded snapshot")
	return snap, nil
}

// Save writes to a temp file in the target directory and renames it into
// place, so a failed write leaves the prior file intact.
func (s *jsonStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".medsched-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into %s: %w", s.path, err)
	}

	s.log.Debug().Str("revision", snap.Meta.Revision.String()).Msg("snapshot saved")
	return nil
}
