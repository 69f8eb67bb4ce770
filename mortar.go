// Package mortar maps Go structs to relational rows. It derives schema
// metadata from struct tags, translates criteria trees and derived finder
// names into vendor-dialect SQL with ordered bind markers, and materializes
// result rows back into entities.
package mortar

import (
	"database/sql"
	"fmt"

	"github.com/gaborage/go-mortar/config"
	"github.com/gaborage/go-mortar/convert"
	"github.com/gaborage/go-mortar/dialect"
	"github.com/gaborage/go-mortar/logger"
	"github.com/gaborage/go-mortar/oracle"
	"github.com/gaborage/go-mortar/postgresql"
	"github.com/gaborage/go-mortar/query"
	"github.com/gaborage/go-mortar/schema"
)

// Mapping bundles one configured mapping stack: the schema registry, the
// vendor dialect, the conversion service and the query components built on
// them. Assemble it once at startup and share it; every component is safe
// for concurrent use after construction.
type Mapping struct {
	Registry    *schema.Registry
	Dialect     dialect.Dialect
	Conversions *convert.Conversions
	Mapper      *query.Mapper
	Generator   *query.Generator
	Reader      *convert.Reader
	Writer      *convert.Writer

	dbConfig config.DatabaseConfig
	log      logger.Logger
}

// Option adjusts how New assembles a Mapping.
type Option func(*options)

type options struct {
	converters []convert.Converter
	naming     schema.NamingStrategy
	log        logger.Logger
}

// WithConverters registers custom converters ahead of the dialect's own,
// so caller conversions win on conflict.
func WithConverters(converters ...convert.Converter) Option {
	return func(o *options) {
		o.converters = append(o.converters, converters...)
	}
}

// WithNamingStrategy overrides the naming strategy selected by the
// configuration.
func WithNamingStrategy(naming schema.NamingStrategy) Option {
	return func(o *options) {
		o.naming = naming
	}
}

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// New assembles a Mapping for the configured vendor. The dialect is
// selected by cfg.Database.Vendor (supported: "postgresql", "oracle",
// "mysql"); an unsupported vendor or naming strategy is an error.
func New(cfg config.Config, opts ...Option) (*Mapping, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	d, err := dialect.ForVendor(cfg.Database.Vendor)
	if err != nil {
		return nil, err
	}

	naming := o.naming
	if naming == nil {
		naming, err = namingFor(cfg.Database.Naming)
		if err != nil {
			return nil, err
		}
	}

	log := o.log
	if log == nil {
		log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
	}

	registry := schema.NewRegistry(naming)

	converters := append([]convert.Converter{}, o.converters...)
	converters = append(converters, d.Converters()...)
	conversions := convert.NewConversions(converters...)
	conversions.RegisterSimpleTypes(d.SimpleTypes()...)

	generator := query.NewGenerator(registry, d, conversions)

	log.Debug().
		Str("vendor", d.Name()).
		Msg("Assembled entity mapping stack")

	return &Mapping{
		Registry:    registry,
		Dialect:     d,
		Conversions: conversions,
		Mapper:      generator.Mapper(),
		Generator:   generator,
		Reader:      convert.NewReader(registry, conversions),
		Writer:      convert.NewWriter(registry, conversions),
		dbConfig:    cfg.Database,
		log:         log,
	}, nil
}

// Connect opens a pooled *sql.DB through the driver adapter matching the
// mapping's vendor. MySQL has a dialect for SQL generation but no bundled
// driver adapter; open such connections directly.
func (m *Mapping) Connect() (*sql.DB, error) {
	switch m.Dialect.Name() {
	case dialect.PostgreSQL:
		return postgresql.Connect(&m.dbConfig, m.log)
	case dialect.Oracle:
		return oracle.Connect(&m.dbConfig, m.log)
	default:
		return nil, fmt.Errorf("no driver adapter for vendor %s (supported: %s, %s)",
			m.Dialect.Name(), dialect.PostgreSQL, dialect.Oracle)
	}
}

// Logger returns the logger the mapping was assembled with.
func (m *Mapping) Logger() logger.Logger {
	return m.log
}

func namingFor(name string) (schema.NamingStrategy, error) {
	switch name {
	case "", config.NamingSnake:
		return schema.SnakeCase{}, nil
	case config.NamingAsIs:
		return schema.AsIs{}, nil
	default:
		return nil, fmt.Errorf("unsupported naming strategy: %s (supported: %s, %s)",
			name, config.NamingSnake, config.NamingAsIs)
	}
}
