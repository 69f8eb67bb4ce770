package mortar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-mortar/config"
	"github.com/gaborage/go-mortar/convert"
	"github.com/gaborage/go-mortar/criteria"
	"github.com/gaborage/go-mortar/dialect"
	"github.com/gaborage/go-mortar/logger"
	"github.com/gaborage/go-mortar/query"
	"github.com/gaborage/go-mortar/schema"
)

type customer struct {
	ID     int64  `db:"id,pk"`
	Name   string `db:"name"`
	Active bool   `db:"active"`
}

func vendorConfig(vendor string) config.Config {
	return config.Config{Database: config.DatabaseConfig{Vendor: vendor}}
}

func TestNewSelectsDialect(t *testing.T) {
	tests := []struct {
		vendor string
		want   string
	}{
		{config.PostgreSQL, dialect.PostgreSQL},
		{config.Oracle, dialect.Oracle},
		{config.MySQL, dialect.MySQL},
	}

	for _, tt := range tests {
		t.Run(tt.vendor, func(t *testing.T) {
			m, err := New(vendorConfig(tt.vendor))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Dialect.Name())
		})
	}
}

func TestNewRejectsUnknownVendor(t *testing.T) {
	_, err := New(vendorConfig("sybase"))
	require.Error(t, err)
	assert.ErrorIs(t, err, dialect.ErrUnknownVendor)
}

func TestNewRejectsUnknownNaming(t *testing.T) {
	cfg := vendorConfig(config.PostgreSQL)
	cfg.Database.Naming = "screaming"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "naming strategy")
}

func TestNewNamingFromConfig(t *testing.T) {
	type OrderLine struct {
		ID        int64 `db:"id,pk"`
		LineTotal int64
	}

	cfg := vendorConfig(config.PostgreSQL)
	cfg.Database.Naming = config.NamingAsIs

	m, err := New(cfg)
	require.NoError(t, err)

	entity, err := schema.Of[OrderLine](m.Registry)
	require.NoError(t, err)
	assert.Equal(t, "orderLine", entity.Table)

	prop, ok := entity.Property("LineTotal")
	require.True(t, ok)
	assert.Equal(t, "LineTotal", prop.Column)
}

func TestNewWithNamingStrategyOverridesConfig(t *testing.T) {
	type OrderLine struct {
		ID int64 `db:"id,pk"`
	}

	cfg := vendorConfig(config.PostgreSQL)
	cfg.Database.Naming = config.NamingAsIs

	m, err := New(cfg, WithNamingStrategy(schema.SnakeCase{}))
	require.NoError(t, err)

	entity, err := schema.Of[OrderLine](m.Registry)
	require.NoError(t, err)
	assert.Equal(t, "order_line", entity.Table)
}

func TestNewUserConvertersWin(t *testing.T) {
	// The Oracle dialect reads NUMBER(1) as bool via n != 0; a caller
	// converter for the same pair must take precedence.
	m, err := New(vendorConfig(config.Oracle), WithConverters(
		convert.ReadAs(func(n int64) (bool, error) {
			return n == 42, nil
		}),
	))
	require.NoError(t, err)

	doc := convert.NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("active", int64(1))

	got, err := convert.ReadEntity[customer](m.Reader, doc, doc)
	require.NoError(t, err)
	assert.False(t, got.Active)

	doc.Put("active", int64(42))
	got, err = convert.ReadEntity[customer](m.Reader, doc, doc)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestNewWithLogger(t *testing.T) {
	log := logger.Noop()
	m, err := New(vendorConfig(config.PostgreSQL), WithLogger(log))
	require.NoError(t, err)
	assert.Same(t, log, m.Logger())
}

func TestMappingGenerateAndRead(t *testing.T) {
	m, err := New(vendorConfig(config.PostgreSQL))
	require.NoError(t, err)

	entity, err := schema.Of[customer](m.Registry)
	require.NoError(t, err)

	stmt, err := m.Generator.Select(entity, query.Query{
		Criteria: criteria.Where("Name").Is("Walter"),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT customer.id, customer.name, customer.active FROM customer WHERE customer.name = $1",
		stmt.SQL)
	assert.Equal(t, []any{"Walter"}, stmt.Args)

	doc := convert.NewRowDocument()
	doc.Put("id", int64(9))
	doc.Put("name", "Walter")
	doc.Put("active", true)

	got, err := convert.ReadEntity[customer](m.Reader, doc, doc)
	require.NoError(t, err)
	assert.Equal(t, customer{ID: 9, Name: "Walter", Active: true}, got)
}

func TestMappingConnectUnsupportedVendor(t *testing.T) {
	m, err := New(vendorConfig(config.MySQL))
	require.NoError(t, err)

	_, err = m.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no driver adapter")
}
