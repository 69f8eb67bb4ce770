package dialect

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/gaborage/go-mortar/convert"
)

// OracleDialect renders SQL for Oracle: :n placeholders, reserved words
// quoted upper-case, NUMBER(1) booleans and OFFSET/FETCH pagination.
type OracleDialect struct{}

// Name returns the vendor identifier.
func (OracleDialect) Name() string {
	return Oracle
}

// BindMarkers returns a fresh :1, :2, ... sequence.
func (OracleDialect) BindMarkers() *BindMarkers {
	return NewIndexedMarkers(":")
}

// QuoteIdentifier quotes reserved words upper-case to match Oracle's
// default identifier case, and quotes identifiers with special characters
// as written.
func (OracleDialect) QuoteIdentifier(ident string) string {
	return quoteDotted(ident, func(part string) string {
		if isDoubleQuoted(part) {
			return part
		}
		if isReservedWord(part) {
			return `"` + strings.ToUpper(part) + `"`
		}
		if identNeedsQuoting(part) {
			return `"` + part + `"`
		}
		return part
	})
}

// EscapeLike escapes LIKE wildcards with a backslash. Statements using the
// escaped value must carry an ESCAPE '\' clause on Oracle.
func (OracleDialect) EscapeLike(value string) string {
	return escapeLikeWith(value, '\\')
}

// SupportsArrays reports that Oracle has no array columns.
func (OracleDialect) SupportsArrays() bool {
	return false
}

// ArrayValue always fails; collections bind element-wise on Oracle.
func (OracleDialect) ArrayValue([]any) (any, error) {
	return nil, fmt.Errorf("oracle: %w", ErrArraysNotSupported)
}

// BooleanValue maps booleans to NUMBER(1) values 1 and 0.
func (OracleDialect) BooleanValue(value bool) any {
	if value {
		return 1
	}
	return 0
}

// LimitOffset renders OFFSET n ROWS FETCH NEXT m ROWS ONLY (12c+).
func (OracleDialect) LimitOffset(limit, offset int64) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}

	parts := make([]string, 0, 2)
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d ROWS", offset))
	}
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("FETCH NEXT %d ROWS ONLY", limit))
	}
	return strings.Join(parts, " ")
}

// LockClause renders FOR UPDATE; Oracle has no shared row lock, so
// LockShare degrades to the exclusive form.
func (OracleDialect) LockClause(mode LockMode) string {
	switch mode {
	case LockUpdate, LockShare:
		return "FOR UPDATE"
	default:
		return ""
	}
}

// SimpleTypes adds nothing beyond the built-in set.
func (OracleDialect) SimpleTypes() []reflect.Type {
	return nil
}

// Converters maps types Oracle has no native column for: UUIDs write as
// VARCHAR2(36) strings, and NUMBER(1) values read back as booleans.
func (OracleDialect) Converters() []convert.Converter {
	return []convert.Converter{
		convert.WriteAs(func(id uuid.UUID) (string, error) {
			return id.String(), nil
		}),
		convert.WriteAs(func(b bool) (int64, error) {
			if b {
				return 1, nil
			}
			return 0, nil
		}),
		convert.ReadAs(func(n int64) (bool, error) {
			return n != 0, nil
		}),
		convert.ReadAs(func(n float64) (bool, error) {
			return n != 0, nil
		}),
	}
}
