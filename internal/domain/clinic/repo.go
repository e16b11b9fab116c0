package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SnapshotMeta identifies a persisted snapshot. Revision changes on every
// save so external tooling can tell snapshots apart.
type SnapshotMeta struct {
	Revision uuid.UUID `json:"revision"`
	SavedAt  time.Time `json:"saved_at"`
}

// Snapshot is the full persisted state: every collection keyed by
// identifier.
type Snapshot struct {
	Meta         SnapshotMeta            `json:"meta"`
	Patients     map[string]*Patient     `json:"patients"`
	Doctors      map[string]*Doctor      `json:"doctors"`
	Appointments map[string]*Appointment `json:"appointments"`
}

// NewSnapshot returns an empty snapshot with initialized collections.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Patients:     make(map[string]*Patient),
		Doctors:      make(map[string]*Doctor),
		Appointments: make(map[string]*Appointment),
	}
}

// Check verifies the referential invariants of a loaded snapshot: every
// appointment points at a known patient and doctor and carries a known
// status. A snapshot failing this check is treated as corrupt.
func (s *Snapshot) Check() error {
	for id, a := range s.Appointments {
		if a.ID != id {
			return fmt.Errorf("appointment keyed %s carries id %s", id, a.ID)
		}
		if _, ok := s.Patients[a.PatientID]; !ok {
			return fmt.Errorf("appointment %s references unknown patient %s", id, a.PatientID)
		}
		if _, ok := s.Doctors[a.DoctorID]; !ok {
			return fmt.Errorf("appointment %s references unknown doctor %s", id, a.DoctorID)
		}
		if !validAppointmentStatuses[a.Status] {
			return fmt.Errorf("appointment %s has unknown status %q", id, a.Status)
		}
	}
	return nil
}

// SnapshotStore loads and stores the whole state atomically: a failed Save
// must leave the previously persisted snapshot intact.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
}
