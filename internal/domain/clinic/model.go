package clinic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidationError reports a bad field value on entity construction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TimeOfDay is a wall-clock time within a day, stored as minutes since
// midnight. It serializes as "HH:MM".
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse time of day %q: bad hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse time of day %q: bad minute", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("time of day: %w", err)
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// timeOfDayAt projects a timestamp onto its minutes-since-midnight value.
func timeOfDayAt(ts time.Time) TimeOfDay {
	return TimeOfDay(ts.Hour()*60 + ts.Minute())
}

// WorkingHours is the daily window during which a doctor accepts
// appointments, on the listed weekdays.
type WorkingHours struct {
	Start TimeOfDay      `db:"work_start" json:"start"`
	End   TimeOfDay      `db:"work_end" json:"end"`
	Days  []time.Weekday `db:"work_days" json:"days"`
}

// DefaultWorkDays is Monday through Friday.
var DefaultWorkDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

func (w WorkingHours) worksOn(d time.Weekday) bool {
	for _, wd := range w.Days {
		if wd == d {
			return true
		}
	}
	return false
}

// contains reports whether the [start, end) interval falls entirely inside
// the window on that day. Both boundaries are themselves acceptable.
func (w WorkingHours) contains(start, end time.Time) bool {
	return timeOfDayAt(start) >= w.Start && timeOfDayAt(end) <= w.End
}

// Person holds the attributes shared by patients and doctors.
type Person struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Contact string `db:"contact" json:"contact"`
}

// Patient is a person who can book appointments.
type Patient struct {
	Person
	Age    *int `db:"age" json:"age,omitempty"`
	Active bool `db:"active" json:"active"`
}

// NewPatient validates and builds a patient record.
func NewPatient(id, name, contact string, age *int) (*Patient, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if age != nil && *age < 0 {
		return nil, &ValidationError{Field: "age", Reason: "must not be negative"}
	}
	return &Patient{
		Person: Person{ID: id, Name: name, Contact: contact},
		Age:    age,
		Active: true,
	}, nil
}

// Doctor is a person who accepts appointments within working hours.
type Doctor struct {
	Person
	Specialty string       `db:"specialty" json:"specialty"`
	Hours     WorkingHours `json:"working_hours"`
}

// NewDoctor validates and builds a doctor record. Empty working days
// default to Monday through Friday.
func NewDoctor(id, name, contact, specialty string, hours WorkingHours) (*Doctor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if hours.Start >= hours.End {
		return nil, &ValidationError{Field: "working_hours", Reason: "start must be before end"}
	}
	if len(hours.Days) == 0 {
		hours.Days = append([]time.Weekday(nil), DefaultWorkDays...)
	}
	return &Doctor{
		Person:    Person{ID: id, Name: name, Contact: contact},
		Specialty: specialty,
		Hours:     hours,
	}, nil
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusCompleted AppointmentStatus = "Completed"
)

var validAppointmentStatuses = map[AppointmentStatus]bool{
	StatusScheduled: true, StatusCancelled: true, StatusCompleted: true,
}

// Appointment binds a patient and a doctor to a [Start, End) interval.
// Appointments are never deleted, only marked Cancelled.
type Appointment struct {
	ID        string            `db:"id" json:"id"`
	PatientID string            `db:"patient_id" json:"patient_id"`
	DoctorID  string            `db:"doctor_id" json:"doctor_id"`
	Start     time.Time         `db:"start_time" json:"start"`
	End       time.Time         `db:"end_time" json:"end"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// NewAppointment validates and builds a Scheduled appointment.
func NewAppointment(id, patientID, doctorID string, start, end time.Time) (*Appointment, error) {
	if patientID == "" {
		return nil, &ValidationError{Field: "patient_id", Reason: "must not be empty"}
	}
	if doctorID == "" {
		return nil, &ValidationError{Field: "doctor_id", Reason: "must not be empty"}
	}
	if !end.After(start) {
		return nil, &ValidationError{Field: "end", Reason: "must be after start"}
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return nil, &ValidationError{Field: "end", Reason: "must be on the same day as start"}
	}
	return &Appointment{
		ID:        id,
		PatientID: patientID,
		DoctorID:  doctorID,
		Start:     start,
		End:       end,
		Status:    StatusScheduled,
		CreatedAt: time.Now(),
	}, nil
}
