package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStore struct{ pool *pgxpool.Pool }

// NewPGStore persists snapshots in PostgreSQL. Save rewrites the patient,
// doctor and appointment tables inside a single transaction; Load reads
// them back in full. Schema is created by the migrate command.
func NewPGStore(pool *pgxpool.Pool) SnapshotStore { return &pgStore{pool: pool} }

const patientCols = `id, name, contact, age, active`
const doctorCols = `id, name, contact, specialty, work_start, work_end, work_days`
const apptCols = `id, patient_id, doctor_id, start_time, end_time, status, notes, created_at`

func (s *pgStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot()

	rows, err := s.pool.Query(ctx, `SELECT `+patientCols+` FROM patients`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Contact, &p.Age, &p.Active); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		snap.Patients[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read patients: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctors`)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		snap.Doctors[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read doctors: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT `+apptCols+` FROM appointments`)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a Appointment
		var status string
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Start, &a.End,
			&status, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.Status = AppointmentStatus(status)
		snap.Appointments[a.ID] = &a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read appointments: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT revision, saved_at FROM snapshot_meta WHERE id = 1`,
	).Scan(&snap.Meta.Revision, &snap.Meta.SavedAt)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("read snapshot meta: %w", err)
	}

	return snap, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var workStart, workEnd string
	var workDays []int32
	if err := row.Scan(&d.ID, &d.Name, &d.Contact, &d.Specialty,
		&workStart, &workEnd, &workDays); err != nil {
		return nil, fmt.Errorf("scan doctor: %w", err)
	}
	var err error
	if d.Hours.Start, err = ParseTimeOfDay(workStart); err != nil {
		return nil, fmt.Errorf("doctor %s: %w", d.ID, err)
	}
	if d.Hours.End, err = ParseTimeOfDay(workEnd); err != nil {
		return nil, fmt.Errorf("doctor %s: %w", d.ID, err)
	}
	for _, wd := range workDays {
		d.Hours.Days = append(d.Hours.Days, time.Weekday(wd))
	}
	return &d, nil
}

func (s *pgStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback(ctx)

	// Full-snapshot semantics: replace everything or nothing.
	for _, table := range []string{"appointments", "doctors", "patients"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range snap.Patients {
		_, err := tx.Exec(ctx,
			`INSERT INTO patients (`+patientCols+`) VALUES ($1,$2,$3,$4,$5)`,
			p.ID, p.Name, p.Contact, p.Age, p.Active)
		if err != nil {
			return fmt.Errorf("insert patient %s: %w", p.ID, err)
		}
	}

	for _, d := range snap.Doctors {
		days := make([]int32, 0, len(d.Hours.Days))
		for _, wd := range d.Hours.Days {
			days = append(days, int32(wd))
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO doctors (`+doctorCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			d.ID, d.Name, d.Contact, d.Specialty,
			d.Hours.Start.String(), d.Hours.End.String(), days)
		if err != nil {
			return fmt.Errorf("insert doctor %s: %w", d.ID, err)
		}
	}

	for _, a := range snap.Appointments {
		_, err := tx.Exec(ctx,
			`INSERT INTO appointments (`+apptCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			a.ID, a.PatientID, a.DoctorID, a.Start, a.End,
			string(a.Status), a.Notes, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert appointment %s: %w", a.ID, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO snapshot_meta (id, revision, saved_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET revision = $1, saved_at = $2`,
		snap.Meta.Revision, snap.Meta.SavedAt)
	if err != nil {
		return fmt.Errorf("write snapshot meta: %w", err)
	}

	return tx.Commit(ctx)
}
