package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-mortar/config"
	"github.com/gaborage/go-mortar/logger"
)

func TestQuoteDSN(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain value", "localhost", "localhost"},
		{"empty value", "", "''"},
		{"dots dashes underscores", "db-host.internal_1", "db-host.internal_1"},
		{"space forces quoting", "pass word", "'pass word'"},
		{"single quote escaped", "it's", `'it\'s'`},
		{"backslash escaped", `a\b`, `'a\\b'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteDSN(tt.value))
		})
	}
}

func TestBuildDSN(t *testing.T) {
	t.Run("from fields", func(t *testing.T) {
		cfg := &config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Username: "app",
			Password: "p@ss",
			Database: "orders",
			SSLMode:  "require",
		}
		assert.Equal(t,
			"host=localhost port=5432 user=app password='p@ss' dbname=orders sslmode=require",
			buildDSN(cfg))
	})

	t.Run("connection string wins", func(t *testing.T) {
		cfg := &config.DatabaseConfig{
			Host:             "ignored",
			ConnectionString: "host=primary port=5432 dbname=x",
		}
		assert.Equal(t, "host=primary port=5432 dbname=x", buildDSN(cfg))
	})
}

func TestConnect(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Username: "app",
		Password: "secret",
		Database: "orders",
		Pool:     config.PoolConfig{MaxConns: 5, MaxIdleConns: 1},
	}

	t.Run("success", func(t *testing.T) {
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		stubOpeners(t, mockDB, nil)

		db, err := Connect(cfg, logger.Noop())
		require.NoError(t, err)
		defer db.Close()
		assert.Same(t, mockDB, db)
	})

	t.Run("ping failure closes the pool", func(t *testing.T) {
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		stubOpeners(t, mockDB, errors.New("refused"))

		_, err = Connect(cfg, logger.Noop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping")
	})
}

func stubOpeners(t *testing.T, db *sql.DB, pingErr error) {
	t.Helper()
	origOpen, origPing := openDB, pingDB
	openDB = func(*pgx.ConnConfig) *sql.DB { return db }
	pingDB = func(context.Context, *sql.DB) error { return pingErr }
	t.Cleanup(func() {
		openDB, pingDB = origOpen, origPing
	})
}
