package dialect

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gaborage/go-mortar/convert"
)

// mysqlNoLimit is the largest BIGINT UNSIGNED value, used when MySQL needs
// an OFFSET without a caller-supplied LIMIT.
const mysqlNoLimit = "18446744073709551615"

// MySQLDialect renders SQL for MySQL: ? placeholders and backtick quoting.
type MySQLDialect struct{}

// Name returns the vendor identifier.
func (MySQLDialect) Name() string {
	return MySQL
}

// BindMarkers returns a fresh anonymous ? sequence.
func (MySQLDialect) BindMarkers() *BindMarkers {
	return NewAnonymousMarkers("?")
}

// QuoteIdentifier backtick-quotes reserved words and identifiers with
// special characters. Embedded backticks are doubled.
func (MySQLDialect) QuoteIdentifier(ident string) string {
	return quoteDotted(ident, func(part string) string {
		if len(part) >= 2 && part[0] == '`' && part[len(part)-1] == '`' {
			return part
		}
		if isReservedWord(part) || identNeedsQuoting(part) {
			return "`" + strings.ReplaceAll(part, "`", "``") + "`"
		}
		return part
	})
}

// EscapeLike escapes LIKE wildcards with a backslash.
func (MySQLDialect) EscapeLike(value string) string {
	return escapeLikeWith(value, '\\')
}

// SupportsArrays reports that MySQL has no array columns.
func (MySQLDialect) SupportsArrays() bool {
	return false
}

// ArrayValue always fails; collections bind element-wise on MySQL.
func (MySQLDialect) ArrayValue([]any) (any, error) {
	return nil, fmt.Errorf("mysql: %w", ErrArraysNotSupported)
}

// BooleanValue passes booleans through; the driver binds them as TINYINT.
func (MySQLDialect) BooleanValue(value bool) any {
	return value
}

// LimitOffset renders LIMIT/OFFSET. MySQL rejects a bare OFFSET, so an
// offset without a limit renders the maximum row count.
func (MySQLDialect) LimitOffset(limit, offset int64) string {
	if limit <= 0 && offset <= 0 {
		return ""
	}
	if limit <= 0 {
		return fmt.Sprintf("LIMIT %s OFFSET %d", mysqlNoLimit, offset)
	}
	return limitOffsetClause(limit, offset)
}

// LockClause renders FOR UPDATE or FOR SHARE (8.0+).
func (MySQLDialect) LockClause(mode LockMode) string {
	switch mode {
	case LockUpdate:
		return "FOR UPDATE"
	case LockShare:
		return "FOR SHARE"
	default:
		return ""
	}
}

// SimpleTypes adds nothing beyond the built-in set.
func (MySQLDialect) SimpleTypes() []reflect.Type {
	return nil
}

// Converters returns no extra conversions.
func (MySQLDialect) Converters() []convert.Converter {
	return nil
}
