package clinic

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service is the session layer: it owns the in-memory snapshot, runs the
// conflict checker before booking and persists the full state after every
// mutation. If a save fails the in-memory change is reverted so memory and
// the store never diverge.
type Service struct {
	store SnapshotStore
	state *Snapshot
	log   zerolog.Logger
}

// NewService loads the persisted snapshot and verifies its invariants.
// A snapshot that cannot be read or fails Check is fatal to startup.
func NewService(ctx context.Context, store SnapshotStore, logger zerolog.Logger) (*Service, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := snap.Check(); err != nil {
		return nil, fmt.Errorf("%w: corrupt snapshot: %v", ErrPersistence, err)
	}
	return &Service{store: store, state: snap, log: logger}, nil
}

func (s *Service) persist(ctx context.Context, revert func()) error {
	prev := s.state.Meta
	s.state.Meta = SnapshotMeta{Revision: uuid.New(), SavedAt: time.Now()}
	if err := s.store.Save(ctx, s.state); err != nil {
		s.state.Meta = prev
		if revert != nil {
			revert()
		}
		s.log.Error().Err(err).Msg("snapshot save failed, mutation reverted")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// nextID allocates the next sequential id for a prefix (P1, D1, A1, ...)
// by scanning the existing identifiers.
func nextID[V any](prefix string, existing map[string]V) string {
	max := 0
	for id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if n, err := strconv.Atoi(id[len(prefix):]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", prefix, max+1)
}

// AddPatient registers a new patient.
func (s *Service) AddPatient(ctx context.Context, name, contact string, age *int) (*Patient, error) {
	id := nextID("P", s.state.Patients)
	p, err := NewPatient(id, name, contact, age)
	if err != nil {
		return nil, err
	}
	s.state.Patients[id] = p
	if err := s.persist(ctx, func() { delete(s.state.Patients, id) }); err != nil {
		return nil, err
	}
	s.log.Info().Str("patient_id", id).Str("name", name).Msg("patient added")
	return p, nil
}

// AddDoctor registers a new doctor.
func (s *Service) AddDoctor(ctx context.Context, name, contact, specialty string, hours WorkingHours) (*Doctor, error) {
	id := nextID("D", s.state.Doctors)
	d, err := NewDoctor(id, name, contact, specialty, hours)
	if err != nil {
		return nil, err
	}
	s.state.Doctors[id] = d
	if err := s.persist(ctx, func() { delete(s.state.Doctors, id) }); err != nil {
		return nil, err
	}
	s.log.Info().Str("doctor_id", id).Str("name", name).Str("specialty", specialty).Msg("doctor added")
	return d, nil
}

// UpdateContact changes the contact info of a patient or doctor, the only
// editable person field.
func (s *Service) UpdateContact(ctx context.Context, personID, contact string) error {
	if p, ok := s.state.Patients[personID]; ok {
		old := p.Contact
		p.Contact = contact
		return s.persist(ctx, func() { p.Contact = old })
	}
	if d, ok := s.state.Doctors[personID]; ok {
		old := d.Contact
		d.Contact = contact
		return s.persist(ctx, func() { d.Contact = old })
	}
	return fmt.Errorf("%w: person %s", ErrNotFound, personID)
}

// Patient looks up a patient by id.
func (s *Service) Patient(id string) (*Patient, error) {
	p, ok := s.state.Patients[id]
	if !ok {
		return nil, fmt.Errorf("%w: patient %s", ErrNotFound, id)
	}
	return p, nil
}

// Doctor looks up a doctor by id.
func (s *Service) Doctor(id string) (*Doctor, error) {
	d, ok := s.state.Doctors[id]
	if !ok {
		return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, id)
	}
	return d, nil
}

// Patients lists all patients sorted by id.
func (s *Service) Patients() []*Patient {
	out := make([]*Patient, 0, len(s.state.Patients))
	for _, p := range s.state.Patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out
}

// Doctors lists all doctors sorted by id.
func (s *Service) Doctors() []*Doctor {
	out := make([]*Doctor, 0, len(s.state.Doctors))
	for _, d := range s.state.Doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out
}

// idLess orders prefixed sequential ids numerically (P2 before P10).
func idLess(a, b string) bool {
	if len(a) > 1 && len(b) > 1 && a[0] == b[0] {
		an, aerr := strconv.Atoi(a[1:])
		bn, berr := strconv.Atoi(b[1:])
		if aerr == nil && berr == nil {
			return an < bn
		}
	}
	return a < b
}

// Book schedules an appointment after the conflict checker accepts it.
func (s *Service) Book(ctx context.Context, patientID, doctorID string, start, end time.Time) (*Appointment, error) {
	if _, ok := s.state.Patients[patientID]; !ok {
		return nil, fmt.Errorf("%w: patient %s", ErrNotFound, patientID)
	}
	doc, ok := s.state.Doctors[doctorID]
	if !ok {
		return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, doctorID)
	}

	id := nextID("A", s.state.Appointments)
	appt, err := NewAppointment(id, patientID, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	if err := scheduleConflict(doc, start, end, s.appointmentList()); err != nil {
		return nil, err
	}

	s.state.Appointments[id] = appt
	if err := s.persist(ctx, func() { delete(s.state.Appointments, id) }); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", id).
		Str("patient_id", patientID).
		Str("doctor_id", doctorID).
		Time("start", start).
		Time("end", end).
		Msg("appointment booked")
	return appt, nil
}

// BookFor schedules an appointment of the given duration in minutes.
func (s *Service) BookFor(ctx context.Context, patientID, doctorID string, start time.Time, minutes int) (*Appointment, error) {
	return s.Book(ctx, patientID, doctorID, start, start.Add(time.Duration(minutes)*time.Minute))
}

// Cancel soft-cancels a scheduled appointment. The record is kept.
func (s *Service) Cancel(ctx context.Context, apptID string) error {
	appt, ok := s.state.Appointments[apptID]
	if !ok {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, apptID)
	}
	if appt.Status != StatusScheduled {
		return fmt.Errorf("%w: appointment %s is %s", ErrNotScheduled, apptID, appt.Status)
	}
	appt.Status = StatusCancelled
	if err := s.persist(ctx, func() { appt.Status = StatusScheduled }); err != nil {
		return err
	}
	s.log.Info().Str("appointment_id", apptID).Msg("appointment cancelled")
	return nil
}

// Complete marks a scheduled appointment as completed and records notes.
func (s *Service) Complete(ctx context.Context, apptID, notes string) error {
	appt, ok := s.state.Appointments[apptID]
	if !ok {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, apptID)
	}
	if appt.Status != StatusScheduled {
		return fmt.Errorf("%w: appointment %s is %s", ErrNotScheduled, apptID, appt.Status)
	}
	oldNotes := appt.Notes
	appt.Status = StatusCompleted
	appt.Notes = notes
	if err := s.persist(ctx, func() { appt.Status, appt.Notes = StatusScheduled, oldNotes }); err != nil {
		return err
	}
	s.log.Info().Str("appointment_id", apptID).Msg("appointment completed")
	return nil
}

// Reschedule moves a scheduled appointment to a new interval by cancelling
// the old record and booking a replacement, keeping the history intact.
func (s *Service) Reschedule(ctx context.Context, apptID string, start, end time.Time) (*Appointment, error) {
	old, ok := s.state.Appointments[apptID]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, apptID)
	}
	if old.Status != StatusScheduled {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrNotScheduled, apptID, old.Status)
	}
	doc := s.state.Doctors[old.DoctorID]

	newID := nextID("A", s.state.Appointments)
	appt, err := NewAppointment(newID, old.PatientID, old.DoctorID, start, end)
	if err != nil {
		return nil, err
	}
	// The record being moved must not block its own new interval.
	others := make([]*Appointment, 0, len(s.state.Appointments))
	for _, a := range s.state.Appointments {
		if a.ID != apptID {
			others = append(others, a)
		}
	}
	if err := scheduleConflict(doc, start, end, others); err != nil {
		return nil, err
	}

	old.Status = StatusCancelled
	s.state.Appointments[newID] = appt
	revert := func() {
		old.Status = StatusScheduled
		delete(s.state.Appointments, newID)
	}
	if err := s.persist(ctx, revert); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", apptID).
		Str("replacement_id", newID).
		Msg("appointment rescheduled")
	return appt, nil
}

// Appointment looks up an appointment by id.
func (s *Service) Appointment(id string) (*Appointment, error) {
	a, ok := s.state.Appointments[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	return a, nil
}

// Filter narrows an appointment listing. Zero fields match everything.
type Filter struct {
	PatientID string
	DoctorID  string
	Status    AppointmentStatus
	Date      *time.Time // matches the calendar day
}

func (f Filter) matches(a *Appointment) bool {
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Date != nil {
		fy, fm, fd := f.Date.Date()
		ay, am, ad := a.Start.Date()
		if fy != ay || fm != am || fd != ad {
			return false
		}
	}
	return true
}

// Appointments lists appointments matching the filter, sorted by start time.
func (s *Service) Appointments(f Filter) []*Appointment {
	var out []*Appointment
	for _, a := range s.state.Appointments {
		if f.matches(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (s *Service) appointmentList() []*Appointment {
	out := make([]*Appointment, 0, len(s.state.Appointments))
	for _, a := range s.state.Appointments {
		out = append(out, a)
	}
	return out
}

// Stats summarizes the collections.
type Stats struct {
	Patients     int
	Doctors      int
	Appointments int
	ByStatus     map[AppointmentStatus]int
}

// Stats returns totals and per-status appointment counts.
func (s *Service) Stats() Stats {
	st := Stats{
		Patients:     len(s.state.Patients),
		Doctors:      len(s.state.Doctors),
		Appointments: len(s.state.Appointments),
		ByStatus:     make(map[AppointmentStatus]int),
	}
	for _, a := range s.state.Appointments {
		st.ByStatus[a.Status]++
	}
	return st
}
