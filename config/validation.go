package config

import (
	"fmt"
	"slices"
	"strings"
)

// Database vendor constants.
const (
	PostgreSQL = "postgresql"
	Oracle     = "oracle"
	MySQL      = "mysql"
)

// Naming strategy constants.
const (
	NamingSnake = "snake"
	NamingAsIs  = "asis"
)

// Validate checks the configuration for values the library cannot work with.
func Validate(cfg *Config) error {
	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

func validateDatabase(cfg *DatabaseConfig) error {
	vendors := []string{PostgreSQL, Oracle, MySQL}
	if !slices.Contains(vendors, cfg.Vendor) {
		return fmt.Errorf("unsupported database vendor %q (supported: %s)",
			cfg.Vendor, strings.Join(vendors, ", "))
	}

	namings := []string{NamingSnake, NamingAsIs}
	if !slices.Contains(namings, cfg.Naming) {
		return fmt.Errorf("unsupported naming strategy %q (supported: %s)",
			cfg.Naming, strings.Join(namings, ", "))
	}

	if cfg.Pool.MaxConns < 0 || cfg.Pool.MaxIdleConns < 0 {
		return fmt.Errorf("pool sizes cannot be negative")
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	if cfg.Level == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}
