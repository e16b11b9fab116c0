package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store != StoreJSON {
		t.Errorf("expected default store %q, got %q", StoreJSON, cfg.Store)
	}
	if cfg.DataFile != "hospital_data.json" {
		t.Errorf("unexpected default data file %q", cfg.DataFile)
	}
	if cfg.DefaultWorkStart != "09:00" || cfg.DefaultWorkEnd != "17:00" {
		t.Errorf("unexpected default working hours %s-%s", cfg.DefaultWorkStart, cfg.DefaultWorkEnd)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE", StorePostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost/medsched")
	t.Setenv("DB_MAX_CONNS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store != StorePostgres {
		t.Errorf("expected postgres store, got %q", cfg.Store)
	}
	if cfg.DBMaxConns != 8 {
		t.Errorf("expected 8 max conns, got %d", cfg.DBMaxConns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	t.Setenv("STORE", StorePostgres)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidate_UnknownStore(t *testing.T) {
	t.Setenv("STORE", "redis")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown store")
	}
}

func TestValidate_BadWorkingHours(t *testing.T) {
	t.Setenv("DEFAULT_WORK_START", "nine")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unparseable DEFAULT_WORK_START")
	}
}
