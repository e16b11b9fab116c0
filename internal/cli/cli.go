// Package cli implements the console surface of the scheduler: the
// non-interactive subcommand actions and the interactive menu. All domain
// errors are recovered here and printed as messages.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/medsched/medsched/internal/domain/clinic"
)

// DateTimeLayout is the console input format for timestamps.
const DateTimeLayout = "2006-01-02 15:04"

// App binds the session service to console input and output.
type App struct {
	Service      *clinic.Service
	In           io.Reader
	Out          io.Writer
	DefaultHours clinic.WorkingHours
}

// ParseDateTime parses "YYYY-MM-DD HH:MM" in local time.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD HH:MM, got %q", s)
	}
	return t, nil
}

// ParseWeekdays parses a comma-separated weekday list, e.g. "Mon,Tue,Fri".
// The empty string means the default working days.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
		"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
		"sat": time.Saturday,
	}
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		key := strings.ToLower(strings.TrimSpace(part))
		if len(key) > 3 {
			key = key[:3]
		}
		d, ok := names[key]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}

// AddPatient registers a patient. age < 0 means not provided.
func (a *App) AddPatient(ctx context.Context, name, contact string, age int) error {
	var agep *int
	if age >= 0 {
		agep = &age
	}
	p, err := a.Service.AddPatient(ctx, name, contact, agep)
	if err != nil {
		return err
	}
	a.printf("Patient added: %s (%s)\n", p.ID, p.Name)
	return nil
}

// AddDoctor registers a doctor. Empty start/end fall back to the default
// working hours; empty days means Monday through Friday.
func (a *App) AddDoctor(ctx context.Context, name, contact, specialty, start, end, days string) error {
	hours := a.DefaultHours
	var err error
	if start != "" {
		if hours.Start, err = clinic.ParseTimeOfDay(start); err != nil {
			return err
		}
	}
	if end != "" {
		if hours.End, err = clinic.ParseTimeOfDay(end); err != nil {
			return err
		}
	}
	if hours.Days, err = ParseWeekdays(days); err != nil {
		return err
	}
	d, err := a.Service.AddDoctor(ctx, name, contact, specialty, hours)
	if err != nil {
		return err
	}
	a.printf("Doctor added: %s (%s, %s), hours %s-%s\n",
		d.ID, d.Name, d.Specialty, d.Hours.Start, d.Hours.End)
	return nil
}

// Book schedules an appointment of the given duration in minutes.
func (a *App) Book(ctx context.Context, patientID, doctorID, start string, minutes int) error {
	t, err := ParseDateTime(start)
	if err != nil {
		return err
	}
	appt, err := a.Service.BookFor(ctx, patientID, doctorID, t, minutes)
	if err != nil {
		return err
	}
	a.printf("Appointment booked:\n%s", a.formatAppointment(appt))
	return nil
}

// Cancel soft-cancels an appointment.
func (a *App) Cancel(ctx context.Context, apptID string) error {
	if err := a.Service.Cancel(ctx, apptID); err != nil {
		return err
	}
	a.printf("Appointment %s cancelled.\n", apptID)
	return nil
}

// Complete marks an appointment completed.
func (a *App) Complete(ctx context.Context, apptID, notes string) error {
	if err := a.Service.Complete(ctx, apptID, notes); err != nil {
		return err
	}
	a.printf("Appointment %s completed.\n", apptID)
	return nil
}

// Reschedule moves an appointment to a new start, keeping its duration
// unless minutes > 0.
func (a *App) Reschedule(ctx context.Context, apptID, start string, minutes int) error {
	t, err := ParseDateTime(start)
	if err != nil {
		return err
	}
	old, err := a.Service.Appointment(apptID)
	if err != nil {
		return err
	}
	dur := old.End.Sub(old.Start)
	if minutes > 0 {
		dur = time.Duration(minutes) * time.Minute
	}
	appt, err := a.Service.Reschedule(ctx, apptID, t, t.Add(dur))
	if err != nil {
		return err
	}
	a.printf("Appointment %s rescheduled as:\n%s", apptID, a.formatAppointment(appt))
	return nil
}

// List prints appointments matching the given filters. Empty values match
// everything; date is "YYYY-MM-DD".
func (a *App) List(patientID, doctorID, status, date string) error {
	f := clinic.Filter{
		PatientID: patientID,
		DoctorID:  doctorID,
		Status:    clinic.AppointmentStatus(status),
	}
	if date != "" {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.Local)
		if err != nil {
			return fmt.Errorf("want YYYY-MM-DD, got %q", date)
		}
		f.Date = &d
	}
	appts := a.Service.Appointments(f)
	if len(appts) == 0 {
		a.printf("No appointments found.\n")
		return nil
	}
	a.printf("APPOINTMENTS (%d found):\n", len(appts))
	for _, appt := range appts {
		a.printf("%s", a.formatAppointment(appt))
	}
	return nil
}

// People prints all patients and doctors.
func (a *App) People() {
	a.printf("PATIENTS:\n")
	for _, p := range a.Service.Patients() {
		age := ""
		if p.Age != nil {
			age = fmt.Sprintf(", age %d", *p.Age)
		}
		a.printf("  %s  %s (%s)%s\n", p.ID, p.Name, p.Contact, age)
	}
	a.printf("DOCTORS:\n")
	for _, d := range a.Service.Doctors() {
		a.printf("  %s  %s (%s), %s, hours %s-%s\n",
			d.ID, d.Name, d.Contact, d.Specialty, d.Hours.Start, d.Hours.End)
	}
}

// Stats prints totals and per-status counts.
func (a *App) Stats() {
	st := a.Service.Stats()
	a.printf("Patients:     %d\n", st.Patients)
	a.printf("Doctors:      %d\n", st.Doctors)
	a.printf("Appointments: %d\n", st.Appointments)
	for _, status := range []clinic.AppointmentStatus{
		clinic.StatusScheduled, clinic.StatusCompleted, clinic.StatusCancelled,
	} {
		if n := st.ByStatus[status]; n > 0 {
			a.printf("  %s: %d\n", status, n)
		}
	}
}

func (a *App) formatAppointment(appt *clinic.Appointment) string {
	patient := appt.PatientID
	if p, err := a.Service.Patient(appt.PatientID); err == nil {
		patient = fmt.Sprintf("%s (%s)", p.Name, p.ID)
	}
	doctor := appt.DoctorID
	if d, err := a.Service.Doctor(appt.DoctorID); err == nil {
		doctor = fmt.Sprintf("%s, %s (%s)", d.Name, d.Specialty, d.ID)
	}
	line := fmt.Sprintf("  %s  %s-%s  patient %s  doctor %s  %s\n",
		appt.ID,
		appt.Start.Format(DateTimeLayout), appt.End.Format("15:04"),
		patient, doctor, appt.Status)
	if appt.Notes != "" {
		line += fmt.Sprintf("      notes: %s\n", appt.Notes)
	}
	return line
}
