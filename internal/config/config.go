// Package config assembles the application's explicit configuration:
// defaults, an optional TOML tuning file, then environment overrides.
// Nothing below main reads the environment directly.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/example/recall/internal/database"
	"github.com/example/recall/internal/srs"
)

// DatabaseConfig selects the storage driver and DSN.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// DigestConfig bounds the reminder window.
type DigestConfig struct {
	StartHour int `toml:"start_hour"`
	EndHour   int `toml:"end_hour"`
}

// Config is everything the application needs to run.
type Config struct {
	Database      DatabaseConfig `toml:"database"`
	Digest        DigestConfig   `toml:"digest"`
	DailyCapacity int            `toml:"daily_capacity"` // Default load-shedding threshold.
	Engine        srs.Params     `toml:"engine"`
}

// Default returns the stock configuration: SQLite in ./data, default
// engine tuning.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: database.DriverSQLite,
			DSN:    "data/recall.db",
		},
		Digest: DigestConfig{
			StartHour: 8,
			EndHour:   22,
		},
		DailyCapacity: 50,
		Engine:        srs.DefaultParams(),
	}
}

// Load reads a TOML config from the given path on top of the defaults.
// A missing file is not an error; an empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to stat config: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment overrides onto cfg. godotenv is expected
// to have populated the process environment already.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("RECALL_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("RECALL_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := envInt("RECALL_DAILY_CAPACITY"); v != nil {
		cfg.DailyCapacity = *v
	}
	if v := envInt("RECALL_DIGEST_START_HOUR"); v != nil {
		cfg.Digest.StartHour = *v
	}
	if v := envInt("RECALL_DIGEST_END_HOUR"); v != nil {
		cfg.Digest.EndHour = *v
	}
	return cfg
}

// Validate checks the assembled configuration.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is empty")
	}
	if c.Digest.StartHour < 0 || c.Digest.StartHour > 23 ||
		c.Digest.EndHour < 0 || c.Digest.EndHour > 23 {
		return fmt.Errorf("digest hours must be within 0-23")
	}
	if c.DailyCapacity < 0 {
		return fmt.Errorf("daily capacity must not be negative")
	}
	return c.Engine.Validate()
}

func envInt(key string) *int {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
