package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/gaborage/go-mortar/convert"
	"github.com/gaborage/go-mortar/criteria"
	"github.com/gaborage/go-mortar/dialect"
	"github.com/gaborage/go-mortar/schema"
)

// Statement is a rendered SQL string together with its positional arguments,
// ready for database/sql or any driver that accepts the dialect's markers.
type Statement struct {
	SQL  string
	Args []any
}

// Query describes one SELECT against an entity. The zero value selects all
// mapped columns of the entity's table, including the columns of one-to-one
// references through outer joins.
type Query struct {
	// Projection restricts the selected columns to the named property paths.
	// Empty means every mapped column.
	Projection []string
	// Criteria filters the result. Empty criteria select everything.
	Criteria criteria.Criteria
	// Sort orders the result.
	Sort criteria.Sort
	// Limit caps the row count when positive.
	Limit int64
	// Offset skips rows when positive.
	Offset int64
	// Distinct deduplicates the projection.
	Distinct bool
	// Lock appends a row-lock clause.
	Lock dialect.LockMode
}

// Generator renders complete statements for mapped entities: SELECT with
// join expansion, INSERT through the squirrel builder, identifier- and
// criteria-keyed UPDATE and DELETE. All value binding goes through the
// converter registry, so custom write conversions apply uniformly.
//
// Generators are stateless and safe for concurrent use.
type Generator struct {
	registry    *schema.Registry
	dialect     dialect.Dialect
	conversions *convert.Conversions
	mapper      *Mapper
	writer      *convert.Writer
}

// NewGenerator creates a generator over a schema registry and dialect. A nil
// conversions registry falls back to the built-in conversions.
func NewGenerator(registry *schema.Registry, d dialect.Dialect, conversions *convert.Conversions) *Generator {
	if conversions == nil {
		conversions = convert.NewConversions()
	}
	return &Generator{
		registry:    registry,
		dialect:     d,
		conversions: conversions,
		mapper:      NewMapper(registry, d, conversions),
		writer:      convert.NewWriter(registry, conversions),
	}
}

// Mapper returns the criteria mapper the generator binds through.
func (g *Generator) Mapper() *Mapper {
	return g.mapper
}

// Select renders a SELECT for entity described by q.
//
// Without an explicit projection the statement selects every mapped column:
// plain properties qualified by the table, embedded properties flattened
// with their prefixes, and one-to-one references expanded through LEFT OUTER
// JOINs whose columns are aliased "<join>_<column>" for prefix-based reads.
func (g *Generator) Select(entity *schema.Entity, q Query) (Statement, error) {
	table := entity.Table
	b := NewBindings(g.dialect)

	joins := g.referencedJoins(entity, q, len(q.Projection) == 0)
	columns, err := g.projectionColumns(entity, table, q.Projection, joins)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(g.dialect.QuoteIdentifier(table))

	for _, prop := range joins {
		clause, err := g.joinClause(entity, prop)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(clause)
	}

	if !q.Criteria.Empty() {
		bound, err := g.mapper.MapCriteria(q.Criteria, table, entity, b)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(bound.SQL())
	}

	if terms := g.mapper.MapSort(q.Sort, table, entity); len(terms) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	if clause := g.dialect.LimitOffset(q.Limit, q.Offset); clause != "" {
		sb.WriteString(" ")
		sb.WriteString(clause)
	}
	if clause := g.dialect.LockClause(q.Lock); clause != "" {
		sb.WriteString(" ")
		sb.WriteString(clause)
	}

	return Statement{SQL: sb.String(), Args: b.Values()}, nil
}

// SelectByID renders the single-row SELECT for an identifier value.
func (g *Generator) SelectByID(entity *schema.Entity, id any) (Statement, error) {
	idProp := entity.IDProperty()
	if idProp == nil {
		return Statement{}, fmt.Errorf("%w: %s", ErrNoIdentifier, entity.Name)
	}
	return g.Select(entity, Query{
		Criteria: criteria.Where(idProp.Name).Is(id),
	})
}

// SelectCount renders SELECT COUNT over the rows matching c. The count targets
// the identifier column when the entity declares one, COUNT(*) otherwise.
func (g *Generator) SelectCount(entity *schema.Entity, c criteria.Criteria) (Statement, error) {
	projection := "COUNT(*)"
	if idProp := entity.IDProperty(); idProp != nil {
		projection = "COUNT(" + g.dialect.QuoteIdentifier(entity.Table+"."+idProp.Column) + ")"
	}
	return g.scalarSelect(entity, projection, c, false)
}

// SelectExists renders the probe SELECT backing exists checks: the identifier
// column (or a literal 1) limited to a single row.
func (g *Generator) SelectExists(entity *schema.Entity, c criteria.Criteria) (Statement, error) {
	projection := "1"
	if idProp := entity.IDProperty(); idProp != nil {
		projection = g.dialect.QuoteIdentifier(entity.Table + "." + idProp.Column)
	}
	return g.scalarSelect(entity, projection, c, true)
}

func (g *Generator) scalarSelect(entity *schema.Entity, projection string, c criteria.Criteria, limitOne bool) (Statement, error) {
	table := entity.Table
	b := NewBindings(g.dialect)

	joins := g.referencedJoins(entity, Query{Criteria: c}, false)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(projection)
	sb.WriteString(" FROM ")
	sb.WriteString(g.dialect.QuoteIdentifier(table))

	for _, prop := range joins {
		clause, err := g.joinClause(entity, prop)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(clause)
	}

	if !c.Empty() {
		bound, err := g.mapper.MapCriteria(c, table, entity, b)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(bound.SQL())
	}

	if limitOne {
		if clause := g.dialect.LimitOffset(1, 0); clause != "" {
			sb.WriteString(" ")
			sb.WriteString(clause)
		}
	}

	return Statement{SQL: sb.String(), Args: b.Values()}, nil
}

// Finder renders the statement for a derived query: its parts translate to
// criteria against args, and the subject selects between a row query, a
// count and an existence probe.
func (g *Generator) Finder(entity *schema.Entity, d criteria.Derived, args ...any) (Statement, error) {
	c, err := d.Translate(args...)
	if err != nil {
		return Statement{}, err
	}

	switch {
	case d.Subject.Count:
		return g.SelectCount(entity, c)
	case d.Subject.Exists:
		return g.SelectExists(entity, c)
	default:
		return g.Select(entity, Query{
			Criteria: c,
			Distinct: d.Subject.Distinct,
			Limit:    d.Subject.Limit,
		})
	}
}

// Insert renders an INSERT for instance. The column set comes from the
// writer, so identifiers still holding their default value are omitted and
// the database fills them.
func (g *Generator) Insert(entity *schema.Entity, instance any) (Statement, error) {
	row, err := g.writeRow(instance)
	if err != nil {
		return Statement{}, err
	}

	columns := row.Columns()
	if len(columns) == 0 {
		return Statement{}, fmt.Errorf("%w: insert into %s", ErrNothingToWrite, entity.Name)
	}

	quoted := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		p, _ := row.Get(column)
		value, err := g.parameterValue(column, p)
		if err != nil {
			return Statement{}, err
		}
		quoted[i] = g.dialect.QuoteIdentifier(column)
		args[i] = value
	}

	sql, sqlArgs, err := g.statementBuilder().
		Insert(g.dialect.QuoteIdentifier(entity.Table)).
		Columns(quoted...).
		Values(args...).
		ToSql()
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql, Args: sqlArgs}, nil
}

// Update renders an UPDATE of every writable column keyed by the instance's
// identifier. The identifier must hold a non-default value.
func (g *Generator) Update(entity *schema.Entity, instance any) (Statement, error) {
	return g.updateInstance(entity, instance, nil)
}

// UpdateVersioned is Update guarded by optimistic locking: the WHERE clause
// matches expected against the version column. The instance is expected to
// carry the already-incremented version, so a row is touched only when no
// concurrent write happened since expected was read.
func (g *Generator) UpdateVersioned(entity *schema.Entity, instance, expected any) (Statement, error) {
	if entity.VersionProperty() == nil {
		return Statement{}, fmt.Errorf("%w: %s", ErrNoVersion, entity.Name)
	}
	return g.updateInstance(entity, instance, &expected)
}

func (g *Generator) updateInstance(entity *schema.Entity, instance any, expectedVersion *any) (Statement, error) {
	idProp := entity.IDProperty()
	if idProp == nil {
		return Statement{}, fmt.Errorf("%w: %s", ErrNoIdentifier, entity.Name)
	}

	value := reflect.ValueOf(instance)
	idValue, _ := entity.IDValue(value)
	if !idValue.IsValid() || idValue.IsZero() {
		return Statement{}, fmt.Errorf("cannot update %s without an identifier value", entity.Name)
	}

	row, err := g.writeRow(instance)
	if err != nil {
		return Statement{}, err
	}

	b := NewBindings(g.dialect)
	var sets []string
	for _, column := range row.Columns() {
		if column == idProp.Column {
			continue
		}
		p, _ := row.Get(column)
		marker, err := g.bindParameter(b, column, p)
		if err != nil {
			return Statement{}, err
		}
		sets = append(sets, g.dialect.QuoteIdentifier(column)+" = "+marker.Placeholder())
	}
	if len(sets) == 0 {
		return Statement{}, fmt.Errorf("%w: update of %s", ErrNothingToWrite, entity.Name)
	}

	idMarker, err := g.mapper.bindValue(idValue.Interface(), idProp.ActualType(), b)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(g.dialect.QuoteIdentifier(entity.Table))
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))
	sb.WriteString(" WHERE ")
	sb.WriteString(g.dialect.QuoteIdentifier(entity.Table + "." + idProp.Column))
	sb.WriteString(" = ")
	sb.WriteString(idMarker.Placeholder())

	if expectedVersion != nil {
		versionProp := entity.VersionProperty()
		versionMarker, err := g.mapper.bindValue(*expectedVersion, versionProp.ActualType(), b)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(g.dialect.QuoteIdentifier(entity.Table + "." + versionProp.Column))
		sb.WriteString(" = ")
		sb.WriteString(versionMarker.Placeholder())
	}

	return Statement{SQL: sb.String(), Args: b.Values()}, nil
}

// UpdateWhere renders an UPDATE of the given assignments restricted by c.
// Assignment markers precede criteria markers, matching SQL clause order.
// Empty criteria update every row.
func (g *Generator) UpdateWhere(entity *schema.Entity, assigns []Assignment, c criteria.Criteria) (Statement, error) {
	b := NewBindings(g.dialect)

	bound, err := g.mapper.MapAssignments(assigns, entity, b)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(g.dialect.QuoteIdentifier(entity.Table))
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(bound.Assignments, ", "))

	if !c.Empty() {
		cond, err := g.mapper.MapCriteria(c, entity.Table, entity, b)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(cond.SQL())
	}

	return Statement{SQL: sb.String(), Args: b.Values()}, nil
}

// Delete renders the single-row DELETE for an identifier value.
func (g *Generator) Delete(entity *schema.Entity, id any) (Statement, error) {
	idProp := entity.IDProperty()
	if idProp == nil {
		return Statement{}, fmt.Errorf("%w: %s", ErrNoIdentifier, entity.Name)
	}

	b := NewBindings(g.dialect)
	marker, err := g.mapper.bindValue(id, idProp.ActualType(), b)
	if err != nil {
		return Statement{}, err
	}

	sql := "DELETE FROM " + g.dialect.QuoteIdentifier(entity.Table) +
		" WHERE " + g.dialect.QuoteIdentifier(entity.Table+"."+idProp.Column) +
		" = " + marker.Placeholder()
	return Statement{SQL: sql, Args: b.Values()}, nil
}

// DeleteWhere renders a DELETE restricted by c. Empty criteria delete every
// row.
func (g *Generator) DeleteWhere(entity *schema.Entity, c criteria.Criteria) (Statement, error) {
	b := NewBindings(g.dialect)

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(g.dialect.QuoteIdentifier(entity.Table))

	if !c.Empty() {
		cond, err := g.mapper.MapCriteria(c, entity.Table, entity, b)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(cond.SQL())
	}

	return Statement{SQL: sb.String(), Args: b.Values()}, nil
}

// writeRow flattens instance through the writer.
func (g *Generator) writeRow(instance any) (*convert.OutboundRow, error) {
	row := convert.NewOutboundRow()
	if err := g.writer.Write(instance, row); err != nil {
		return nil, err
	}
	return row, nil
}

// statementBuilder returns a squirrel builder emitting this dialect's
// placeholder format.
func (g *Generator) statementBuilder() squirrel.StatementBuilderType {
	switch g.dialect.Name() {
	case dialect.PostgreSQL:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	case dialect.Oracle:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Colon)
	default:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	}
}

// parameterValue unwraps a written parameter into a driver argument,
// converting collection values through the dialect's array support.
func (g *Generator) parameterValue(column string, p convert.Parameter) (any, error) {
	if p.IsNull() {
		return nil, nil
	}
	if elements, ok := p.Value.([]any); ok {
		arr, err := g.dialect.ArrayValue(elements)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		return arr, nil
	}
	return p.Value, nil
}

// bindParameter binds a written parameter, converting collection values
// through the dialect's array support.
func (g *Generator) bindParameter(b *Bindings, column string, p convert.Parameter) (dialect.BindMarker, error) {
	if p.IsNull() {
		return b.BindParameter(p), nil
	}
	if elements, ok := p.Value.([]any); ok {
		arr, err := g.dialect.ArrayValue(elements)
		if err != nil {
			return dialect.BindMarker{}, fmt.Errorf("column %s: %w", column, err)
		}
		return b.Bind(arr), nil
	}
	return b.BindParameter(p), nil
}

// referencedJoins collects the one-to-one references a query touches. With
// expandAll every one-to-one reference of the entity joins; otherwise only
// references actually traversed by the projection, criteria or sort
// contribute a join.
func (g *Generator) referencedJoins(entity *schema.Entity, q Query, expandAll bool) []*schema.Property {
	seen := make(map[string]struct{})
	var out []*schema.Property

	add := func(prop *schema.Property) {
		if prop == nil {
			return
		}
		if _, ok := seen[prop.Column]; ok {
			return
		}
		seen[prop.Column] = struct{}{}
		out = append(out, prop)
	}

	if expandAll {
		for _, prop := range entity.Properties() {
			if prop.IsEntity && !prop.IsCollection && !prop.IsMap {
				add(prop)
			}
		}
	} else {
		for _, expr := range q.Projection {
			add(g.joinTarget(entity, expr, true))
		}
	}

	for _, expr := range criteriaPaths(q.Criteria) {
		add(g.joinTarget(entity, expr, false))
	}
	for _, o := range q.Sort {
		add(g.joinTarget(entity, o.Column, false))
	}
	return out
}

// joinTarget finds the one-to-one reference a path traverses, descending
// through embedded properties first. wholeEntity additionally accepts a bare
// reference path, which projects the whole associated row.
func (g *Generator) joinTarget(entity *schema.Entity, expr string, wholeEntity bool) *schema.Property {
	head, rest, dotted := strings.Cut(expr, ".")
	prop, ok := entity.LookupProperty(head)
	if !ok {
		return nil
	}

	switch {
	case prop.IsEntity && !prop.IsCollection && !prop.IsMap:
		if dotted || wholeEntity {
			return prop
		}
		return nil
	case prop.IsEmbedded && dotted:
		nested, err := g.registry.EntityOf(prop.NestedType())
		if err != nil {
			return nil
		}
		return g.joinTarget(nested, rest, wholeEntity)
	default:
		return nil
	}
}

// criteriaPaths collects every property path a criteria chain references.
func criteriaPaths(c criteria.Criteria) []string {
	var out []string
	var walk func(criteria.Criteria)
	walk = func(c criteria.Criteria) {
		for _, cl := range c.Clauses() {
			if cl.IsGroup() {
				walk(cl.Group)
				continue
			}
			if cl.Column != "" {
				out = append(out, cl.Column)
			}
		}
	}
	walk(c)
	return out
}

// joinClause renders the outer join for a one-to-one reference. The child
// table carries a back-reference column named after the owning table, and
// the join is aliased with the reference's column name so selected columns
// read back under the "<alias>_" prefix.
func (g *Generator) joinClause(entity *schema.Entity, prop *schema.Property) (string, error) {
	child, err := g.registry.EntityOf(prop.NestedType())
	if err != nil {
		return "", err
	}
	idProp := entity.IDProperty()
	if idProp == nil {
		return "", fmt.Errorf("%w: cannot join %s of %s", ErrNoIdentifier, prop.Name, entity.Name)
	}

	quote := g.dialect.QuoteIdentifier
	alias := prop.Column
	return " LEFT OUTER JOIN " + quote(child.Table) + " AS " + quote(alias) +
		" ON " + quote(alias+"."+entity.Table) + " = " + quote(entity.Table+"."+idProp.Column), nil
}

// projectionColumns renders the select list. An empty projection expands to
// all mapped columns; explicit paths resolve individually, with embedded
// paths expanding to their flattened sub-columns.
func (g *Generator) projectionColumns(entity *schema.Entity, table string, exprs []string, joins []*schema.Property) ([]string, error) {
	if len(exprs) == 0 {
		return g.allColumns(entity, table, joins)
	}

	var columns []string
	for _, expr := range exprs {
		field := g.registry.Resolve(entity, expr)

		if nested, prefix, ok := field.EmbeddedEntity(); ok {
			qualifier := field.Qualifier()
			if qualifier == "" {
				qualifier = table
			}
			for _, sub := range nested.Properties() {
				if sub.IsEntity || sub.IsEmbedded {
					continue
				}
				columns = append(columns, g.dialect.QuoteIdentifier(qualifier+"."+prefix+sub.Column))
			}
			continue
		}

		if prop := field.Property(); prop != nil && prop.IsEntity && !prop.IsCollection && !prop.IsMap {
			joined, err := g.joinColumns(prop)
			if err != nil {
				return nil, err
			}
			columns = append(columns, joined...)
			continue
		}

		columns = append(columns, g.mapper.columnSQL(table, field))
	}
	return columns, nil
}

// allColumns expands the unrestricted projection: the entity's own columns
// followed by the aliased columns of each join.
func (g *Generator) allColumns(entity *schema.Entity, table string, joins []*schema.Property) ([]string, error) {
	var columns []string
	if err := g.appendOwnColumns(&columns, entity, table, ""); err != nil {
		return nil, err
	}
	for _, prop := range joins {
		joined, err := g.joinColumns(prop)
		if err != nil {
			return nil, err
		}
		columns = append(columns, joined...)
	}
	return columns, nil
}

// appendOwnColumns appends the table-owned columns of entity in metamodel
// order, recursing through embedded properties with their prefixes.
func (g *Generator) appendOwnColumns(columns *[]string, entity *schema.Entity, qualifier, prefix string) error {
	for _, prop := range entity.Properties() {
		switch {
		case prop.IsEmbedded:
			nested, err := g.registry.EntityOf(prop.NestedType())
			if err != nil {
				return err
			}
			if err := g.appendOwnColumns(columns, nested, qualifier, prefix+prop.EmbeddedPrefix); err != nil {
				return err
			}
		case prop.IsEntity:
			// Joined separately, or not selectable at all.
		default:
			*columns = append(*columns, g.dialect.QuoteIdentifier(qualifier+"."+prefix+prop.Column))
		}
	}
	return nil
}

// joinColumns renders the aliased select list of one joined reference. Every
// column of the child, including its identifier, is selected as
// "<alias>.<column> AS <alias>_<column>".
func (g *Generator) joinColumns(prop *schema.Property) ([]string, error) {
	child, err := g.registry.EntityOf(prop.NestedType())
	if err != nil {
		return nil, err
	}

	alias := prop.Column
	var columns []string
	aliased := func(column string) {
		columns = append(columns,
			g.dialect.QuoteIdentifier(alias+"."+column)+" AS "+g.dialect.QuoteIdentifier(alias+"_"+column))
	}

	for _, sub := range child.Properties() {
		switch {
		case sub.IsEmbedded:
			nested, err := g.registry.EntityOf(sub.NestedType())
			if err != nil {
				return nil, err
			}
			for _, leaf := range nested.Properties() {
				if leaf.IsEntity || leaf.IsEmbedded {
					continue
				}
				aliased(sub.EmbeddedPrefix + leaf.Column)
			}
		case sub.IsEntity:
			// Nested references are loaded separately.
		default:
			aliased(sub.Column)
		}
	}
	return columns, nil
}
