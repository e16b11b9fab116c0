package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medsched/medsched/internal/cli"
	"github.com/medsched/medsched/internal/config"
	"github.com/medsched/medsched/internal/domain/clinic"
	"github.com/medsched/medsched/internal/platform/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medsched",
		Short:        "Hospital appointment scheduler",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		menuCmd(),
		addPatientCmd(),
		addDoctorCmd(),
		bookCmd(),
		cancelCmd(),
		completeCmd(),
		rescheduleCmd(),
		listCmd(),
		peopleCmd(),
		statsCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return logger
}

// newApp loads config, opens the configured snapshot store and builds the
// session service. The returned closer releases the store resources.
func newApp(ctx context.Context) (*cli.App, func(), error) {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var store clinic.SnapshotStore
	closer := func() {}
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		store = clinic.NewPGStore(pool)
		closer = pool.Close
	default:
		store = clinic.NewJSONStore(cfg.DataFile, logger)
	}

	svc, err := clinic.NewService(ctx, store, logger)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("cannot start with persisted state: %w", err)
	}

	workStart, err := clinic.ParseTimeOfDay(cfg.DefaultWorkStart)
	if err != nil {
		closer()
		return nil, nil, err
	}
	workEnd, err := clinic.ParseTimeOfDay(cfg.DefaultWorkEnd)
	if err != nil {
		closer()
		return nil, nil, err
	}

	app := &cli.App{
		Service: svc,
		In:      os.Stdin,
		Out:     os.Stdout,
		DefaultHours: clinic.WorkingHours{
			Start: workStart,
			End:   workEnd,
		},
	}
	return app, closer, nil
}

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive console menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.RunMenu(cmd.Context())
		},
	}
}

func addPatientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-patient",
		Short: "Register a new patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			contact, _ := cmd.Flags().GetString("contact")
			age, _ := cmd.Flags().GetInt("age")
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.AddPatient(cmd.Context(), name, contact, age)
		},
	}
	cmd.Flags().String("name", "", "Patient name")
	cmd.Flags().String("contact", "", "Contact info")
	cmd.Flags().Int("age", -1, "Age (optional)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func addDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-doctor",
		Short: "Register a new doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			contact, _ := cmd.Flags().GetString("contact")
			specialty, _ := cmd.Flags().GetString("specialty")
			start, _ := cmd.Flags().GetString("work-start")
			end, _ := cmd.Flags().GetString("work-end")
			days, _ := cmd.Flags().GetString("work-days")
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.AddDoctor(cmd.Context(), name, contact, specialty, start, end, days)
		},
	}
	cmd.Flags().String("name", "", "Doctor name")
	cmd.Flags().String("contact", "", "Contact info")
	cmd.Flags().String("specialty", "", "Specialty")
	cmd.Flags().String("work-start", "", "Workday start HH:MM (default from config)")
	cmd.Flags().String("work-end", "", "Workday end HH:MM (default from config)")
	cmd.Flags().String("work-days", "", "Working days, e.g. Mon,Tue,Wed (default Mon-Fri)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, _ := cmd.Flags().GetString("patient")
			doctor, _ := cmd.Flags().GetString("doctor")
			start, _ := cmd.Flags().GetString("start")
			minutes, _ := cmd.Flags().GetInt("minutes")
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.Book(cmd.Context(), patient, doctor, start, minutes)
		},
	}
	cmd.Flags().String("patient", "", "Patient ID")
	cmd.Flags().String("doctor", "", "Doctor ID")
	cmd.Flags().String("start", "", "Start time (YYYY-MM-DD HH:MM)")
	cmd.Flags().Int("minutes", 30, "Duration in minutes")
	cmd.MarkFlagRequired("patient")
	cmd.MarkFlagRequired("doctor")
	cmd.MarkFlagRequired("start")
	return cmd
}

func cancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <appointment-id>",
		Short: "Cancel an appointment (record is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.Cancel(cmd.Context(), args[0])
		},
	}
	return cmd
}

func completeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <appointment-id>",
		Short: "Mark an appointment completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, _ := cmd.Flags().GetString("notes")
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.Complete(cmd.Context(), args[0], notes)
		},
	}
	cmd.Flags().String("notes", "", "Visit notes")
	return cmd
}

func rescheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reschedule <appointment-id>",
		Short: "Move an appointment to a new time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			minutes, _ := cmd.Flags().GetInt("minutes")
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.Reschedule(cmd.Context(), args[0], start, minutes)
		},
	}
	cmd.Flags().String("start", "", "New start time (YYYY-MM-DD HH:MM)")
	cmd.Flags().Int("minutes", 0, "New duration in minutes (0 keeps the old duration)")
	cmd.MarkFlagRequired("start")
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, _ := cmd.Flags().GetString("patient")
			doctor, _ := cmd.Flags().GetString("doctor")
			status, _ := cmd.Flags().GetString("status")
			date, _ := cmd.Flags().GetString("date")
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return app.List(patient, doctor, status, date)
		},
	}
	cmd.Flags().String("patient", "", "Filter by patient ID")
	cmd.Flags().String("doctor", "", "Filter by doctor ID")
	cmd.Flags().String("status", "", "Filter by status (Scheduled, Cancelled, Completed)")
	cmd.Flags().String("date", "", "Filter by date (YYYY-MM-DD)")
	return cmd
}

func peopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "List all patients and doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			app.People()
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show system statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closer, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			app.Stats()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema (STORE=postgres only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("migrate requires STORE=%s", config.StorePostgres)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Println("Schema applied.")
			return nil
		},
	}
}
