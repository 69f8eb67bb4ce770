// Package config loads and validates the library configuration from
// defaults, an optional YAML file and MORTAR_-prefixed environment
// variables, in increasing priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database" json:"database" yaml:"database" toml:"database" mapstructure:"database"`
	Log      LogConfig      `koanf:"log" json:"log" yaml:"log" toml:"log" mapstructure:"log"`
}

// DatabaseConfig selects the vendor dialect and carries the connection
// settings the vendor packages consume.
type DatabaseConfig struct {
	Vendor   string `koanf:"vendor" json:"vendor" yaml:"vendor" toml:"vendor" mapstructure:"vendor"`
	Host     string `koanf:"host" json:"host" yaml:"host" toml:"host" mapstructure:"host"`
	Port     int    `koanf:"port" json:"port" yaml:"port" toml:"port" mapstructure:"port"`
	Database string `koanf:"database" json:"database" yaml:"database" toml:"database" mapstructure:"database"`
	Username string `koanf:"username" json:"username" yaml:"username" toml:"username" mapstructure:"username"`
	Password string `koanf:"password" json:"password" yaml:"password" toml:"password" mapstructure:"password"`

	// SSLMode applies to PostgreSQL connections only.
	SSLMode string `koanf:"sslmode" json:"sslmode" yaml:"sslmode" toml:"sslmode" mapstructure:"sslmode"`
	// ServiceName and SID apply to Oracle connections only; ServiceName wins
	// when both are set.
	ServiceName string `koanf:"servicename" json:"servicename" yaml:"servicename" toml:"servicename" mapstructure:"servicename"`
	SID         string `koanf:"sid" json:"sid" yaml:"sid" toml:"sid" mapstructure:"sid"`

	// ConnectionString bypasses field-based DSN construction entirely.
	ConnectionString string `koanf:"connectionstring" json:"connectionstring" yaml:"connectionstring" toml:"connectionstring" mapstructure:"connectionstring"`

	// Naming selects the column naming strategy: "snake" derives snake_case
	// column and table names, "asis" uses field names verbatim.
	Naming string `koanf:"naming" json:"naming" yaml:"naming" toml:"naming" mapstructure:"naming"`

	Pool PoolConfig `koanf:"pool" json:"pool" yaml:"pool" toml:"pool" mapstructure:"pool"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxConns     int           `koanf:"maxconns" json:"maxconns" yaml:"maxconns" toml:"maxconns" mapstructure:"maxconns"`
	MaxIdleConns int           `koanf:"maxidleconns" json:"maxidleconns" yaml:"maxidleconns" toml:"maxidleconns" mapstructure:"maxidleconns"`
	MaxLifetime  time.Duration `koanf:"maxlifetime" json:"maxlifetime" yaml:"maxlifetime" toml:"maxlifetime" mapstructure:"maxlifetime"`
	MaxIdleTime  time.Duration `koanf:"maxidletime" json:"maxidletime" yaml:"maxidletime" toml:"maxidletime" mapstructure:"maxidletime"`
}

// LogConfig configures the library logger.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" toml:"level" mapstructure:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" toml:"pretty" mapstructure:"pretty"`
}

// envPrefix namespaces the environment variables consulted by Load.
const envPrefix = "MORTAR_"

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and MORTAR_-prefixed environment variables, validating
// the result. MORTAR_DATABASE_VENDOR=oracle overrides database.vendor.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(envprovider.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"database.vendor": PostgreSQL,
		"database.naming": NamingSnake,

		"database.pool.maxconns":     25,
		"database.pool.maxidleconns": 2,
		"database.pool.maxlifetime":  "30m",
		"database.pool.maxidletime":  "5m",

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
