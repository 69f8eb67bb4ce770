package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/gaborage/go-mortar/dialect"
)

// Builder exposes hand-written statement construction alongside the mapped
// Generator. It wraps squirrel with the dialect's placeholder format and
// identifier quoting, for the statements a metamodel cannot express.
type Builder struct {
	dialect dialect.Dialect
	sb      squirrel.StatementBuilderType
}

// NewBuilder creates a builder emitting SQL in the given dialect.
func NewBuilder(d dialect.Dialect) *Builder {
	var sb squirrel.StatementBuilderType
	switch d.Name() {
	case dialect.PostgreSQL:
		sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	case dialect.Oracle:
		sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Colon)
	default:
		sb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	}
	return &Builder{dialect: d, sb: sb}
}

// Select creates a SELECT builder with the columns quoted for the dialect.
func (b *Builder) Select(columns ...string) squirrel.SelectBuilder {
	return b.sb.Select(b.quoteAll(columns)...)
}

// Insert creates an INSERT builder for the table.
func (b *Builder) Insert(table string) squirrel.InsertBuilder {
	return b.sb.Insert(b.dialect.QuoteIdentifier(table))
}

// InsertWithColumns creates an INSERT builder with a quoted column list.
func (b *Builder) InsertWithColumns(table string, columns ...string) squirrel.InsertBuilder {
	return b.Insert(table).Columns(b.quoteAll(columns)...)
}

// Update creates an UPDATE builder for the table.
func (b *Builder) Update(table string) squirrel.UpdateBuilder {
	return b.sb.Update(b.dialect.QuoteIdentifier(table))
}

// Delete creates a DELETE builder for the table.
func (b *Builder) Delete(table string) squirrel.DeleteBuilder {
	return b.sb.Delete(b.dialect.QuoteIdentifier(table))
}

// Eq creates an equality condition with the column quoted for the dialect.
func (b *Builder) Eq(column string, value any) squirrel.Eq {
	return squirrel.Eq{b.dialect.QuoteIdentifier(column): value}
}

// NotEq creates a not-equal condition with the column quoted for the dialect.
func (b *Builder) NotEq(column string, value any) squirrel.NotEq {
	return squirrel.NotEq{b.dialect.QuoteIdentifier(column): value}
}

// Lt creates a less-than condition with the column quoted for the dialect.
func (b *Builder) Lt(column string, value any) squirrel.Lt {
	return squirrel.Lt{b.dialect.QuoteIdentifier(column): value}
}

// Gt creates a greater-than condition with the column quoted for the dialect.
func (b *Builder) Gt(column string, value any) squirrel.Gt {
	return squirrel.Gt{b.dialect.QuoteIdentifier(column): value}
}

// CaseInsensitiveLike creates a case-insensitive substring match. PostgreSQL
// uses ILIKE; other dialects upper-case both sides. LIKE metacharacters in
// value match literally.
func (b *Builder) CaseInsensitiveLike(column, value string) squirrel.Sqlizer {
	quoted := b.dialect.QuoteIdentifier(column)
	pattern := "%" + b.dialect.EscapeLike(value) + "%"

	if b.dialect.Name() == dialect.PostgreSQL {
		return squirrel.ILike{quoted: pattern}
	}
	return squirrel.Like{"UPPER(" + quoted + ")": strings.ToUpper(pattern)}
}

// CurrentTimestamp returns the dialect's current-timestamp expression.
func (b *Builder) CurrentTimestamp() string {
	if b.dialect.Name() == dialect.Oracle {
		return "SYSDATE"
	}
	return "NOW()"
}

// UUIDGeneration returns the dialect's UUID generation expression.
func (b *Builder) UUIDGeneration() string {
	switch b.dialect.Name() {
	case dialect.PostgreSQL:
		return "gen_random_uuid()"
	case dialect.Oracle:
		return "SYS_GUID()"
	default:
		return "UUID()"
	}
}

// Upsert renders an insert-or-update statement. PostgreSQL uses
// ON CONFLICT DO UPDATE, MySQL ON DUPLICATE KEY UPDATE (conflict columns are
// implied by the table's unique keys there), and Oracle a MERGE against dual.
// Column order is sorted for deterministic SQL.
func (b *Builder) Upsert(table string, conflictColumns []string, insertColumns, updateColumns map[string]any) (string, []any, error) {
	switch b.dialect.Name() {
	case dialect.PostgreSQL:
		return b.postgresUpsert(table, conflictColumns, insertColumns, updateColumns)
	case dialect.Oracle:
		return b.oracleMerge(table, conflictColumns, insertColumns, updateColumns)
	case dialect.MySQL:
		return b.mysqlUpsert(table, insertColumns, updateColumns)
	default:
		return "", nil, fmt.Errorf("upsert not supported for dialect %s", b.dialect.Name())
	}
}

func (b *Builder) postgresUpsert(table string, conflictColumns []string, insertColumns, updateColumns map[string]any) (string, []any, error) {
	if len(conflictColumns) == 0 || len(updateColumns) == 0 {
		return "", nil, fmt.Errorf("conflict columns and update columns required for postgresql upsert")
	}

	insertKeys := sortedKeys(insertColumns)
	insert := b.InsertWithColumns(table, insertKeys...).
		Values(valuesByKeyOrder(insertColumns, insertKeys)...)

	conflicts := append([]string(nil), conflictColumns...)
	sort.Strings(conflicts)
	for i, c := range conflicts {
		conflicts[i] = b.dialect.QuoteIdentifier(c)
	}

	updateKeys := sortedKeys(updateColumns)
	sets := make([]string, len(updateKeys))
	for i, col := range updateKeys {
		quoted := b.dialect.QuoteIdentifier(col)
		sets[i] = quoted + " = EXCLUDED." + quoted
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return "", nil, err
	}
	sql += " ON CONFLICT (" + strings.Join(conflicts, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	return sql, args, nil
}

func (b *Builder) mysqlUpsert(table string, insertColumns, updateColumns map[string]any) (string, []any, error) {
	if len(updateColumns) == 0 {
		return "", nil, fmt.Errorf("update columns required for mysql upsert")
	}

	insertKeys := sortedKeys(insertColumns)
	insert := b.InsertWithColumns(table, insertKeys...).
		Values(valuesByKeyOrder(insertColumns, insertKeys)...)

	updateKeys := sortedKeys(updateColumns)
	sets := make([]string, len(updateKeys))
	for i, col := range updateKeys {
		quoted := b.dialect.QuoteIdentifier(col)
		sets[i] = quoted + " = VALUES(" + quoted + ")"
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return "", nil, err
	}
	sql += " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	return sql, args, nil
}

func (b *Builder) oracleMerge(table string, conflictColumns []string, insertColumns, updateColumns map[string]any) (string, []any, error) {
	if len(conflictColumns) == 0 {
		return "", nil, fmt.Errorf("conflict columns required for oracle merge")
	}

	insertKeys := sortedKeys(insertColumns)
	quotedInsert := make([]string, len(insertKeys))
	usingValues := make([]string, len(insertKeys))
	for i, col := range insertKeys {
		quotedInsert[i] = b.dialect.QuoteIdentifier(col)
		usingValues[i] = fmt.Sprintf(":%d AS %s", i+1, quotedInsert[i])
	}
	args := valuesByKeyOrder(insertColumns, insertKeys)

	conflicts := append([]string(nil), conflictColumns...)
	sort.Strings(conflicts)
	onConditions := make([]string, len(conflicts))
	for i, col := range conflicts {
		quoted := b.dialect.QuoteIdentifier(col)
		onConditions[i] = "target." + quoted + " = source." + quoted
	}

	updateKeys := sortedKeys(updateColumns)
	sets := make([]string, len(updateKeys))
	for i, col := range updateKeys {
		sets[i] = fmt.Sprintf("%s = :%d", b.dialect.QuoteIdentifier(col), len(insertKeys)+i+1)
	}
	args = append(args, valuesByKeyOrder(updateColumns, updateKeys)...)

	insertVals := make([]string, len(quotedInsert))
	for i, col := range quotedInsert {
		insertVals[i] = "source." + col
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "MERGE INTO %s target USING (SELECT %s FROM dual) source ON (%s)",
		b.dialect.QuoteIdentifier(table),
		strings.Join(usingValues, ", "),
		strings.Join(onConditions, " AND "))
	if len(sets) > 0 {
		sb.WriteString(" WHEN MATCHED THEN UPDATE SET ")
		sb.WriteString(strings.Join(sets, ", "))
	}
	fmt.Fprintf(&sb, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		strings.Join(quotedInsert, ", "),
		strings.Join(insertVals, ", "))

	return sb.String(), args, nil
}

func (b *Builder) quoteAll(columns []string) []string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.dialect.QuoteIdentifier(c)
	}
	return quoted
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func valuesByKeyOrder(m map[string]any, keys []string) []any {
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return values
}
