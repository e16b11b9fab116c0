package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
)

type Config struct {
	Env              string `mapstructure:"ENV"`
	Store            string `mapstructure:"STORE"`
	DataFile         string `mapstructure:"DATA_FILE"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32  `mapstructure:"DB_MIN_CONNS"`
	DefaultWorkStart string `mapstructure:"DEFAULT_WORK_START"`
	DefaultWorkEnd   string `mapstructure:"DEFAULT_WORK_END"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE", StoreJSON)
	v.SetDefault("DATA_FILE", "hospital_data.json")
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DEFAULT_WORK_START", "09:00")
	v.SetDefault("DEFAULT_WORK_END", "17:00")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("STORE")
	v.BindEnv("DATA_FILE")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DEFAULT_WORK_START")
	v.BindEnv("DEFAULT_WORK_END")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is usable before any store is
// opened.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreJSON:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required when STORE is %q", StoreJSON)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreJSON, StorePostgres, c.Store)
	}

	for _, tod := range []struct{ name, value string }{
		{"DEFAULT_WORK_START", c.DefaultWorkStart},
		{"DEFAULT_WORK_END", c.DefaultWorkEnd},
	} {
		if _, err := time.Parse("15:04", tod.value); err != nil {
			return fmt.Errorf("%s must be HH:MM, got %q", tod.name, tod.value)
		}
	}

	return nil
}
