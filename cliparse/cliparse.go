// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port               int    `env:"PORT" envDefault:"3318"`
	DatabaseURL        string `env:"DATABASE_URL"`
	DatabaseType       string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	CoordinatorKeySalt string `env:"COORDINATOR_KEY_SALT"`
	CoordinatorID      string `env:"COORDINATOR_ID"`
	ElectionTitle      string `env:"ELECTION_TITLE" envDefault:"Election"`
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags reads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("quickly-elect", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Election setup
	fs.StringVar(&cfg.CoordinatorID, "coordinator", cfg.CoordinatorID, "Coordinator identity")
	fs.StringVar(&cfg.ElectionTitle, "title", cfg.ElectionTitle, "Election title")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.CoordinatorKeySalt, "coordinator-salt", cfg.CoordinatorKeySalt, "Coordinator key salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("database type must be %s or %s, got %q", DatabaseSQLite, DatabasePostgres, cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.CoordinatorKeySalt == "" {
		return Config{}, errors.New("COORDINATOR_KEY_SALT required")
	}
	if cfg.CoordinatorID == "" {
		return Config{}, errors.New("COORDINATOR_ID required")
	}

	return cfg, nil
}
