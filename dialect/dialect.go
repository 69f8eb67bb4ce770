// Package dialect encapsulates per-database SQL rendering differences:
// bind marker syntax, identifier quoting, array support, LIKE escaping,
// pagination clauses, and vendor-specific value conversions.
package dialect

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gaborage/go-mortar/convert"
)

// Vendor identifies a supported database backend.
type Vendor = string

// Supported database vendors.
const (
	PostgreSQL Vendor = "postgresql"
	Oracle     Vendor = "oracle"
	MySQL      Vendor = "mysql"
)

// LockMode selects the row-lock clause appended to a SELECT statement.
type LockMode int

const (
	// LockNone renders no lock clause.
	LockNone LockMode = iota
	// LockUpdate acquires an exclusive row lock (FOR UPDATE).
	LockUpdate
	// LockShare acquires a shared row lock where the vendor supports one.
	LockShare
)

var (
	// ErrUnknownVendor is returned by ForVendor for unsupported vendor names.
	ErrUnknownVendor = errors.New("unknown database vendor")
	// ErrArraysNotSupported is returned by ArrayValue on vendors without array columns.
	ErrArraysNotSupported = errors.New("vendor does not support array columns")
)

// Dialect bundles the database-specific rendering rules consulted during
// SQL generation and parameter binding. Implementations are stateless and
// safe for concurrent use; per-statement state lives in the BindMarkers
// sequence returned by BindMarkers.
type Dialect interface {
	// Name returns the vendor identifier.
	Name() string

	// BindMarkers returns a fresh placeholder sequence for one statement.
	BindMarkers() *BindMarkers

	// QuoteIdentifier quotes an identifier (or dotted identifier path) when
	// the vendor requires it. Ordinary identifiers render unquoted.
	QuoteIdentifier(ident string) string

	// EscapeLike escapes LIKE wildcards in a literal value so it matches
	// verbatim inside a pattern.
	EscapeLike(value string) string

	// SupportsArrays reports whether the vendor has native array columns.
	SupportsArrays() bool

	// ArrayValue wraps a collection for binding as a single array parameter.
	// Vendors without array support return ErrArraysNotSupported.
	ArrayValue(values []any) (any, error)

	// BooleanValue converts a Go bool to the vendor's parameter representation.
	BooleanValue(value bool) any

	// LimitOffset renders the pagination suffix for the given limit and
	// offset. Values of zero or less are treated as absent; an empty string
	// means no clause.
	LimitOffset(limit, offset int64) string

	// LockClause renders the row-lock suffix for the given mode, or an
	// empty string for LockNone.
	LockClause(mode LockMode) string

	// SimpleTypes lists additional types the vendor stores natively, beyond
	// the built-in simple type set.
	SimpleTypes() []reflect.Type

	// Converters returns vendor-specific value conversions, applied after
	// any caller-registered converters.
	Converters() []convert.Converter
}

// ForVendor returns the dialect for the given vendor name.
func ForVendor(vendor string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(vendor)) {
	case PostgreSQL, "postgres", "pgx":
		return Postgres{}, nil
	case Oracle:
		return OracleDialect{}, nil
	case MySQL:
		return MySQLDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s, %s)", ErrUnknownVendor, vendor, PostgreSQL, Oracle, MySQL)
	}
}

// escapeLikeWith escapes %, _ and the escape character itself using the
// given escape character.
func escapeLikeWith(value string, escape byte) string {
	var b strings.Builder
	b.Grow(len(value) + 4)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '%' || c == '_' || c == escape {
			b.WriteByte(escape)
		}
		b.WriteByte(c)
	}
	return b.String()
}

// limitOffsetClause renders the standard LIMIT/OFFSET suffix shared by
// PostgreSQL-style vendors.
func limitOffsetClause(limit, offset int64) string {
	parts := make([]string, 0, 2)
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", limit))
	}
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", offset))
	}
	return strings.Join(parts, " ")
}
