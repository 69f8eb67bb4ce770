package mortartest

import (
	"database/sql/driver"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-mortar/query"
)

// RequireSQL fails the test unless got and want are the same SQL text
// modulo whitespace.
func RequireSQL(t testing.TB, got, want string) {
	t.Helper()
	require.Equal(t, normalizeSQL(want), normalizeSQL(got))
}

func normalizeSQL(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExpectSelect registers a query expectation for a generated statement,
// matching its SQL exactly and its bind values in order. Chain
// WillReturnRows on the result.
func ExpectSelect(mock sqlmock.Sqlmock, stmt query.Statement) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(regexp.QuoteMeta(stmt.SQL)).WithArgs(bindValues(stmt)...)
}

// ExpectExec registers an exec expectation for a generated statement,
// matching its SQL exactly and its bind values in order. Chain
// WillReturnResult on the result.
func ExpectExec(mock sqlmock.Sqlmock, stmt query.Statement) *sqlmock.ExpectedExec {
	return mock.ExpectExec(regexp.QuoteMeta(stmt.SQL)).WithArgs(bindValues(stmt)...)
}

func bindValues(stmt query.Statement) []driver.Value {
	out := make([]driver.Value, len(stmt.Args))
	for i, a := range stmt.Args {
		out[i] = a
	}
	return out
}
