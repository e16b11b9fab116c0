package clinic

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	start, _ := ParseTimeOfDay("09:00")
	end, _ := ParseTimeOfDay("17:00")
	doc, err := NewDoctor("D1", "Dr. Croft", "555-9999", "Cardiology", WorkingHours{Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	age := 42
	pat, err := NewPatient("P1", "Alice", "555-1234", &age)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := NewSnapshot()
	snap.Meta = SnapshotMeta{Revision: uuid.New(), SavedAt: time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)}
	snap.Doctors[doc.ID] = doc
	snap.Patients[pat.ID] = pat
	snap.Appointments["A1"] = &Appointment{
		ID: "A1", PatientID: "P1", DoctorID: "D1",
		Start:     time.Date(2026, 2, 17, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 2, 17, 10, 30, 0, 0, time.UTC),
		Status:    StatusCompleted,
		Notes:     "routine checkup",
		CreatedAt: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
	return snap
}

func TestJSONStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital_data.json")
	store := NewJSONStore(path, zerolog.Nop())

	snap := testSnapshot(t)
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded.Patients, snap.Patients) {
		t.Errorf("patients changed in round trip:\n%+v\n%+v", loaded.Patients, snap.Patients)
	}
	if !reflect.DeepEqual(loaded.Doctors, snap.Doctors) {
		t.Errorf("doctors changed in round trip:\n%+v\n%+v", loaded.Doctors, snap.Doctors)
	}
	if !reflect.DeepEqual(loaded.Appointments, snap.Appointments) {
		t.Errorf("appointments changed in round trip:\n%+v\n%+v", loaded.Appointments, snap.Appointments)
	}
	if loaded.Meta.Revision != snap.Meta.Revision {
		t.Errorf("revision changed in round trip: %s != %s", loaded.Meta.Revision, snap.Meta.Revision)
	}
	if err := loaded.Check(); err != nil {
		t.Errorf("loaded snapshot fails invariant check: %v", err)
	}
}

func TestJSONStore_MissingFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")
	store := NewJSONStore(path, zerolog.Nop())

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Patients)+len(snap.Doctors)+len(snap.Appointments) != 0 {
		t.Error("expected empty snapshot for missing file")
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := NewJSONStore(path, zerolog.Nop())

	if _, err := store.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt data file")
	}
}

func TestJSONStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital_data.json")
	store := NewJSONStore(path, zerolog.Nop())

	snap := testSnapshot(t)
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	delete(snap.Appointments, "A1")
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Appointments) != 0 {
		t.Errorf("expected overwritten snapshot without appointments, got %d", len(loaded.Appointments))
	}
	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the data file in the directory, got %d entries", len(entries))
	}
}
