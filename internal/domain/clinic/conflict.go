package clinic

import (
	"errors"
	"fmt"
	"time"
)

// Errors surfaced by the session layer. Validation failures use
// *ValidationError instead.
var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("booking conflict")
	ErrNotScheduled = errors.New("appointment is not in Scheduled status")
	ErrPersistence  = errors.New("persistence failure")
)

// CanSchedule reports whether the [start, end) interval can be booked for
// the doctor given the existing appointments. Cancelled appointments and
// appointments of other doctors are ignored; intervals that merely touch at
// an endpoint do not conflict.
func CanSchedule(doc *Doctor, start, end time.Time, existing []*Appointment) bool {
	return scheduleConflict(doc, start, end, existing) == nil
}

// scheduleConflict is CanSchedule with a reason: nil means the interval is
// acceptable, otherwise an ErrConflict-wrapped explanation is returned.
func scheduleConflict(doc *Doctor, start, end time.Time, existing []*Appointment) error {
	if !doc.Hours.worksOn(start.Weekday()) {
		return fmt.Errorf("%w: %s is not a working day for doctor %s",
			ErrConflict, start.Weekday(), doc.ID)
	}
	if !doc.Hours.contains(start, end) {
		return fmt.Errorf("%w: outside doctor %s working hours (%s-%s)",
			ErrConflict, doc.ID, doc.Hours.Start, doc.Hours.End)
	}
	for _, e := range existing {
		if e.DoctorID != doc.ID || e.Status == StatusCancelled {
			continue
		}
		// Half-open overlap: back-to-back bookings are allowed.
		if start.Before(e.End) && e.Start.Before(end) {
			return fmt.Errorf("%w: overlaps appointment %s (%s-%s)",
				ErrConflict, e.ID,
				e.Start.Format("2006-01-02 15:04"), e.End.Format("15:04"))
		}
	}
	return nil
}
