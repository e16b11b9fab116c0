package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements for the Postgres snapshot store. Idempotent so the
// migrate command can be re-run safely.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id text PRIMARY KEY,
		name text NOT NULL,
		contact text NOT NULL DEFAULT '',
		age int,
		active boolean NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		id text PRIMARY KEY,
		name text NOT NULL,
		contact text NOT NULL DEFAULT '',
		specialty text NOT NULL DEFAULT '',
		work_start text NOT NULL,
		work_end text NOT NULL,
		work_days int[] NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id text PRIMARY KEY,
		patient_id text NOT NULL REFERENCES patients(id),
		doctor_id text NOT NULL REFERENCES doctors(id),
		start_time timestamptz NOT NULL,
		end_time timestamptz NOT NULL,
		status text NOT NULL,
		notes text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL,
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS appointments_doctor_idx ON appointments (doctor_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS snapshot_meta (
		id int PRIMARY KEY CHECK (id = 1),
		revision uuid NOT NULL,
		saved_at timestamptz NOT NULL
	)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
