package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medsched/medsched/internal/domain/clinic"
)

func newTestApp(t *testing.T, in string) (*App, *bytes.Buffer) {
	t.Helper()
	store := clinic.NewJSONStore(filepath.Join(t.TempDir(), "data.json"), zerolog.Nop())
	svc, err := clinic.NewService(context.Background(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := &bytes.Buffer{}
	workStart, _ := clinic.ParseTimeOfDay("09:00")
	workEnd, _ := clinic.ParseTimeOfDay("17:00")
	return &App{
		Service:      svc,
		In:           strings.NewReader(in),
		Out:          out,
		DefaultHours: clinic.WorkingHours{Start: workStart, End: workEnd},
	}, out
}

func TestParseDateTime(t *testing.T) {
	ts, err := ParseDateTime("2026-02-17 10:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Hour() != 10 || ts.Minute() != 30 {
		t.Errorf("unexpected time %v", ts)
	}
	if _, err := ParseDateTime("17/02/2026"); err == nil {
		t.Error("expected error for wrong format")
	}
}

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays("Mon, Wednesday ,fri")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(days) != len(want) {
		t.Fatalf("expected %v, got %v", want, days)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("expected %v, got %v", want, days)
		}
	}
	if _, err := ParseWeekdays("Funday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
	if days, _ := ParseWeekdays(""); days != nil {
		t.Error("expected nil for empty input")
	}
}

func TestAppBookFlow(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	if err := app.AddPatient(ctx, "Alice", "555-1234", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := app.AddDoctor(ctx, "Dr. Croft", "555-9999", "Cardiology", "", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := app.Book(ctx, "P1", "D1", "2026-02-17 10:00", 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := app.Book(ctx, "P1", "D1", "2026-02-17 10:15", 30); err == nil {
		t.Error("expected conflicting booking to fail")
	}
	if err := app.List("", "", "", "2026-02-17"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Patient added: P1", "Doctor added: D1", "A1", "Scheduled"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunMenu(t *testing.T) {
	input := strings.Join([]string{
		"1", "Alice", "555-1234", "42", // add patient
		"9", // statistics
		"0", // exit
	}, "\n") + "\n"
	app, out := newTestApp(t, input)

	if err := app.RunMenu(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Patient added: P1", "Patients:     1", "Goodbye."} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunMenu_ErrorsAreRecovered(t *testing.T) {
	input := strings.Join([]string{
		"4", "A99", // cancel unknown appointment
		"0",
	}, "\n") + "\n"
	app, out := newTestApp(t, input)

	if err := app.RunMenu(context.Background()); err != nil {
		t.Fatalf("expected menu to recover domain errors, got %v", err)
	}
	if !strings.Contains(out.String(), "Error:") {
		t.Error("expected error message in output")
	}
}
