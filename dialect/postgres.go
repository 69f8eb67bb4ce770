package dialect

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gaborage/go-mortar/convert"
)

// Postgres renders SQL for PostgreSQL: $n placeholders, ANSI double-quote
// quoting only where required, native booleans, arrays and UUIDs.
type Postgres struct{}

// Name returns the vendor identifier.
func (Postgres) Name() string {
	return PostgreSQL
}

// BindMarkers returns a fresh $1, $2, ... sequence.
func (Postgres) BindMarkers() *BindMarkers {
	return NewIndexedMarkers("$")
}

// QuoteIdentifier quotes reserved words and identifiers with special
// characters; ordinary identifiers render unquoted.
func (Postgres) QuoteIdentifier(ident string) string {
	return quoteDotted(ident, func(part string) string {
		if isDoubleQuoted(part) {
			return part
		}
		if isReservedWord(part) || identNeedsQuoting(part) {
			return `"` + part + `"`
		}
		return part
	})
}

// EscapeLike escapes LIKE wildcards with a backslash, PostgreSQL's default
// escape character.
func (Postgres) EscapeLike(value string) string {
	return escapeLikeWith(value, '\\')
}

// SupportsArrays reports native array column support.
func (Postgres) SupportsArrays() bool {
	return true
}

// ArrayValue wraps the collection with pq.Array so the driver binds it as
// a single array parameter.
func (Postgres) ArrayValue(values []any) (any, error) {
	return pq.Array(values), nil
}

// BooleanValue passes booleans through unchanged.
func (Postgres) BooleanValue(value bool) any {
	return value
}

// LimitOffset renders the standard LIMIT/OFFSET suffix.
func (Postgres) LimitOffset(limit, offset int64) string {
	return limitOffsetClause(limit, offset)
}

// LockClause renders FOR UPDATE or FOR SHARE.
func (Postgres) LockClause(mode LockMode) string {
	switch mode {
	case LockUpdate:
		return "FOR UPDATE"
	case LockShare:
		return "FOR SHARE"
	default:
		return ""
	}
}

// SimpleTypes adds uuid.UUID, which PostgreSQL stores natively.
func (Postgres) SimpleTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(uuid.UUID{})}
}

// Converters returns no extra conversions; the driver handles the native
// type set directly.
func (Postgres) Converters() []convert.Converter {
	return nil
}
