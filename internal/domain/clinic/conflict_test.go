package clinic

import (
	"testing"
	"time"
)

// 2026-02-17 is a Tuesday.
func day(hour, min int) time.Time {
	return time.Date(2026, 2, 17, hour, min, 0, 0, time.UTC)
}

func testDoctor(t *testing.T) *Doctor {
	t.Helper()
	start, _ := ParseTimeOfDay("09:00")
	end, _ := ParseTimeOfDay("17:00")
	d, err := NewDoctor("D1", "Dr. Croft", "", "Cardiology", WorkingHours{Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func scheduled(id string, start, end time.Time) *Appointment {
	return &Appointment{
		ID: id, PatientID: "P1", DoctorID: "D1",
		Start: start, End: end, Status: StatusScheduled,
	}
}

func TestCanSchedule_RejectsOverlap(t *testing.T) {
	doc := testDoctor(t)
	existing := []*Appointment{scheduled("A1", day(10, 0), day(10, 30))}

	if CanSchedule(doc, day(10, 15), day(10, 45), existing) {
		t.Error("expected 10:15-10:45 to conflict with 10:00-10:30")
	}
	if CanSchedule(doc, day(9, 45), day(10, 15), existing) {
		t.Error("expected 09:45-10:15 to conflict with 10:00-10:30")
	}
	if CanSchedule(doc, day(9, 45), day(11, 0), existing) {
		t.Error("expected enclosing interval to conflict")
	}
	if CanSchedule(doc, day(10, 5), day(10, 25), existing) {
		t.Error("expected enclosed interval to conflict")
	}
}

func TestCanSchedule_BackToBack(t *testing.T) {
	doc := testDoctor(t)
	existing := []*Appointment{scheduled("A1", day(10, 0), day(10, 30))}

	if !CanSchedule(doc, day(10, 30), day(11, 0), existing) {
		t.Error("expected appointment starting at existing end to be acceptable")
	}
	if !CanSchedule(doc, day(9, 30), day(10, 0), existing) {
		t.Error("expected appointment ending at existing start to be acceptable")
	}
}

func TestCanSchedule_WorkingHourBoundaries(t *testing.T) {
	doc := testDoctor(t)

	if !CanSchedule(doc, day(9, 0), day(17, 0), nil) {
		t.Error("expected full working window to be acceptable")
	}
	if CanSchedule(doc, day(8, 59), day(9, 30), nil) {
		t.Error("expected start one minute before opening to be rejected")
	}
	if CanSchedule(doc, day(16, 30), day(17, 1), nil) {
		t.Error("expected end one minute after closing to be rejected")
	}
	if CanSchedule(doc, day(8, 30), day(9, 0), nil) {
		t.Error("expected 08:30-09:00 to be rejected as outside working hours")
	}
}

func TestCanSchedule_IgnoresCancelled(t *testing.T) {
	doc := testDoctor(t)
	cancelled := scheduled("A1", day(10, 0), day(10, 30))
	cancelled.Status = StatusCancelled

	if !CanSchedule(doc, day(10, 0), day(10, 30), []*Appointment{cancelled}) {
		t.Error("expected cancelled appointment not to block the interval")
	}
}

func TestCanSchedule_IgnoresOtherDoctors(t *testing.T) {
	doc := testDoctor(t)
	other := scheduled("A1", day(10, 0), day(10, 30))
	other.DoctorID = "D2"

	if !CanSchedule(doc, day(10, 0), day(10, 30), []*Appointment{other}) {
		t.Error("expected other doctor's appointment not to block the interval")
	}
}

func TestCanSchedule_CompletedStillBlocks(t *testing.T) {
	doc := testDoctor(t)
	done := scheduled("A1", day(10, 0), day(10, 30))
	done.Status = StatusCompleted

	if CanSchedule(doc, day(10, 0), day(10, 30), []*Appointment{done}) {
		t.Error("expected completed appointment to still block the interval")
	}
}

func TestCanSchedule_NonWorkingDay(t *testing.T) {
	doc := testDoctor(t)
	sunday := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)

	if CanSchedule(doc, sunday, sunday.Add(30*time.Minute), nil) {
		t.Error("expected Sunday booking to be rejected for a Mon-Fri doctor")
	}
}
