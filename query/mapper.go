// Package query turns criteria chains into dialect-aware parameterized SQL.
// The Mapper folds criteria into a bound condition tree, resolving property
// paths through the schema registry and allocating placeholders through the
// dialect's bind marker sequence; the Generator assembles complete SELECT,
// INSERT, UPDATE and DELETE statements around those conditions.
package query

import (
	"fmt"
	"reflect"

	"github.com/gaborage/go-mortar/convert"
	"github.com/gaborage/go-mortar/criteria"
	"github.com/gaborage/go-mortar/dialect"
	"github.com/gaborage/go-mortar/schema"
)

// Mapper translates criteria, sort orders and assignments into SQL
// fragments with bound parameters. Mappers are stateless and safe for
// concurrent use; all per-statement state lives in the Bindings argument.
type Mapper struct {
	registry    *schema.Registry
	dialect     dialect.Dialect
	conversions *convert.Conversions
}

// NewMapper builds a mapper over the given registry, dialect and converter
// registry. A nil conversions defaults to an empty registry.
func NewMapper(registry *schema.Registry, d dialect.Dialect, conversions *convert.Conversions) *Mapper {
	if conversions == nil {
		conversions = convert.NewConversions()
	}
	return &Mapper{registry: registry, dialect: d, conversions: conversions}
}

// comparatorOperators maps single-placeholder comparators to their SQL
// operator text.
var comparatorOperators = map[criteria.Comparator]string{
	criteria.Eq:      "=",
	criteria.Neq:     "!=",
	criteria.Lt:      "<",
	criteria.Lte:     "<=",
	criteria.Gt:      ">",
	criteria.Gte:     ">=",
	criteria.Like:    "LIKE",
	criteria.NotLike: "NOT LIKE",
}

// caseComparators lists the comparators that honor the ignore-case flag.
var caseComparators = map[criteria.Comparator]bool{
	criteria.Eq:      true,
	criteria.Neq:     true,
	criteria.Like:    true,
	criteria.NotLike: true,
}

// MapCriteria folds a criteria chain into a bound condition tree. Columns
// are qualified with table (or with the join alias of the property path's
// owner); entity may be nil, in which case column names pass through
// verbatim. Every bound value allocates a placeholder in b.
func (m *Mapper) MapCriteria(c criteria.Criteria, table string, entity *schema.Entity, b *Bindings) (BoundCondition, error) {
	if c.Empty() {
		return BoundCondition{}, ErrEmptyCriteria
	}

	cond, err := m.foldClauses(c.Clauses(), table, entity, b)
	if err != nil {
		return BoundCondition{}, err
	}
	if cond == nil {
		return BoundCondition{}, ErrEmptyCriteria
	}
	return BoundCondition{Condition: cond, Bindings: b}, nil
}

// foldClauses applies each clause's combinator left to right. A mid-chain
// Initial clause marks the head of a concatenated chain and is AND-combined
// inside its own group.
func (m *Mapper) foldClauses(clauses []criteria.Clause, table string, entity *schema.Entity, b *Bindings) (Condition, error) {
	var current Condition

	for _, cl := range clauses {
		mapped, err := m.mapNode(cl, table, entity, b)
		if err != nil {
			return nil, err
		}
		if mapped == nil {
			continue
		}

		if current == nil {
			current = mapped
			continue
		}

		switch cl.Combinator {
		case criteria.Initial:
			current = AndCondition{Left: current, Right: nest(mapped)}
		case criteria.And:
			current = AndCondition{Left: current, Right: mapped}
		case criteria.Or:
			current = OrCondition{Left: current, Right: mapped}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownCombinator, cl.Combinator)
		}
	}

	return current, nil
}

// mapNode maps one chain node. Group clauses recurse and nest; clauses with
// nothing to contribute map to nil.
func (m *Mapper) mapNode(cl criteria.Clause, table string, entity *schema.Entity, b *Bindings) (Condition, error) {
	if cl.IsGroup() {
		inner, err := m.foldClauses(cl.Group.Clauses(), table, entity, b)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, nil
		}
		return Nested{Inner: inner}, nil
	}

	if cl.Column == "" {
		return nil, nil
	}
	return m.mapClause(cl, table, entity, b)
}

// mapClause maps one column predicate. Embedded targets explode into one
// predicate per sub-property, AND-combined.
func (m *Mapper) mapClause(cl criteria.Clause, table string, entity *schema.Entity, b *Bindings) (Condition, error) {
	field := m.registry.Resolve(entity, cl.Column)

	if nested, prefix, ok := field.EmbeddedEntity(); ok {
		qualifier := field.Qualifier()
		if qualifier == "" {
			qualifier = table
		}
		return m.mapEmbedded(cl, qualifier, nested, prefix, b)
	}

	column := m.columnSQL(table, field)

	switch cl.Comparator {
	case criteria.IsNull, criteria.IsNotNull:
		return NullCheck{Column: column, Negated: cl.Comparator == criteria.IsNotNull}, nil
	case criteria.IsTrue, criteria.IsFalse:
		marker := b.Bind(m.dialect.BooleanValue(cl.Comparator == criteria.IsTrue))
		return Comparison{Column: column, Operator: "=", Argument: marker.Placeholder()}, nil
	case criteria.In, criteria.NotIn:
		return m.mapIn(cl, column, field.TypeHint(), b)
	case criteria.Between, criteria.NotBetween:
		return m.mapBetween(cl, column, field.TypeHint(), b)
	default:
		return m.scalarCondition(cl.Comparator, cl.IgnoreCase, column, cl.Value, field.TypeHint(), fieldLabel(field), b)
	}
}

// mapEmbedded explodes a predicate on an embedded property into one
// predicate per simple sub-property, reading each comparison value from the
// given (possibly nil) embedded instance.
func (m *Mapper) mapEmbedded(cl criteria.Clause, qualifier string, nested *schema.Entity, prefix string, b *Bindings) (Condition, error) {
	instance, err := embeddedInstance(cl.Value, nested)
	if err != nil {
		return nil, err
	}

	var current Condition
	for _, prop := range nested.Properties() {
		if prop.IsEntity || prop.IsEmbedded || prop.IsCollection {
			continue
		}

		column := m.dialect.QuoteIdentifier(qualify(qualifier, prefix+prop.Column))

		var cond Condition
		if cl.Comparator == criteria.IsNull || cl.Comparator == criteria.IsNotNull {
			cond = NullCheck{Column: column, Negated: cl.Comparator == criteria.IsNotNull}
		} else {
			var value any
			if instance.IsValid() {
				value = prop.ValueOf(instance).Interface()
			}
			cond, err = m.scalarCondition(cl.Comparator, cl.IgnoreCase, column, value, prop.ActualType(), prop.Name, b)
			if err != nil {
				return nil, err
			}
		}

		if current == nil {
			current = cond
		} else {
			current = AndCondition{Left: current, Right: cond}
		}
	}

	if current == nil {
		return nil, fmt.Errorf("embedded %s has no mappable columns", nested.Name)
	}
	return current, nil
}

// scalarCondition maps a single-placeholder comparator, applying the
// ignore-case wrapping when requested.
func (m *Mapper) scalarCondition(comp criteria.Comparator, ignoreCase bool, column string, value any, hint reflect.Type, label string, b *Bindings) (Condition, error) {
	op, ok := comparatorOperators[comp]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComparator, comp)
	}

	upper := ignoreCase && caseComparators[comp]
	if upper && hint != nil && hint.Kind() != reflect.String {
		return nil, fmt.Errorf("%w: %s is %s", ErrIgnoreCase, label, hint)
	}

	marker, err := m.bindValue(value, hint, b)
	if err != nil {
		return nil, err
	}
	argument := marker.Placeholder()

	if upper {
		column = "UPPER(" + column + ")"
		argument = "UPPER(" + argument + ")"
	}

	return Comparison{Column: column, Operator: op, Argument: argument}, nil
}

// mapIn maps IN and NOT_IN. Iterable values bind one placeholder per
// element; an empty iterable renders a constant predicate; a non-iterable
// value falls back to a single placeholder.
func (m *Mapper) mapIn(cl criteria.Clause, column string, hint reflect.Type, b *Bindings) (Condition, error) {
	negated := cl.Comparator == criteria.NotIn

	elements, iterable := iterableElements(cl.Value)
	if !iterable {
		marker, err := m.bindValue(cl.Value, hint, b)
		if err != nil {
			return nil, err
		}
		return InList{Column: column, Markers: []string{marker.Placeholder()}, Negated: negated}, nil
	}

	// A single iterable element is the fluent API's variadic wrapping of a
	// caller-supplied slice; expand it.
	if len(elements) == 1 {
		if inner, ok := iterableElements(elements[0]); ok {
			elements = inner
		}
	}

	if len(elements) == 0 {
		if negated {
			return Literal{Text: "1 = 1"}, nil
		}
		return Literal{Text: "1 = 0"}, nil
	}

	markers := make([]string, len(elements))
	for i, el := range elements {
		marker, err := m.bindValue(el, hint, b)
		if err != nil {
			return nil, err
		}
		markers[i] = marker.Placeholder()
	}
	return InList{Column: column, Markers: markers, Negated: negated}, nil
}

// mapBetween maps BETWEEN and NOT_BETWEEN, requiring a two-element pair.
func (m *Mapper) mapBetween(cl criteria.Clause, column string, hint reflect.Type, b *Bindings) (Condition, error) {
	pair, ok := iterableElements(cl.Value)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("%w: column %s got %T", ErrNotAPair, column, cl.Value)
	}

	lo, err := m.bindValue(pair[0], hint, b)
	if err != nil {
		return nil, err
	}
	hi, err := m.bindValue(pair[1], hint, b)
	if err != nil {
		return nil, err
	}

	return Range{
		Column:  column,
		Lo:      lo.Placeholder(),
		Hi:      hi.Placeholder(),
		Negated: cl.Comparator == criteria.NotBetween,
	}, nil
}

// MapSort renders ORDER BY terms. An embedded sort key explodes into one
// term per simple sub-property, preserving direction and null handling.
func (m *Mapper) MapSort(s criteria.Sort, table string, entity *schema.Entity) []string {
	terms := make([]string, 0, len(s))
	for _, order := range s {
		field := m.registry.Resolve(entity, order.Column)

		if nested, prefix, ok := field.EmbeddedEntity(); ok {
			qualifier := field.Qualifier()
			if qualifier == "" {
				qualifier = table
			}
			for _, prop := range nested.Properties() {
				if prop.IsEntity || prop.IsEmbedded || prop.IsCollection {
					continue
				}
				column := m.dialect.QuoteIdentifier(qualify(qualifier, prefix+prop.Column))
				terms = append(terms, orderTerm(column, order))
			}
			continue
		}

		terms = append(terms, orderTerm(m.columnSQL(table, field), order))
	}
	return terms
}

func orderTerm(column string, o criteria.Order) string {
	term := column
	if o.Descending {
		term += " DESC"
	} else {
		term += " ASC"
	}
	switch o.Nulls {
	case criteria.NullsFirst:
		term += " NULLS FIRST"
	case criteria.NullsLast:
		term += " NULLS LAST"
	}
	return term
}

// Assignment is one UPDATE SET term: a property path or column name and the
// value to assign.
type Assignment struct {
	Column string
	Value  any
}

// MapAssignments renders UPDATE SET terms, binding each value. Embedded
// assignments explode into one term per simple sub-property. SET columns
// render unqualified.
func (m *Mapper) MapAssignments(assigns []Assignment, entity *schema.Entity, b *Bindings) (BoundAssignments, error) {
	if len(assigns) == 0 {
		return BoundAssignments{}, ErrEmptyAssignments
	}

	rendered := make([]string, 0, len(assigns))
	for _, a := range assigns {
		field := m.registry.Resolve(entity, a.Column)

		if nested, prefix, ok := field.EmbeddedEntity(); ok {
			terms, err := m.embeddedAssignments(a, nested, prefix, b)
			if err != nil {
				return BoundAssignments{}, err
			}
			rendered = append(rendered, terms...)
			continue
		}

		marker, err := m.bindValue(a.Value, field.TypeHint(), b)
		if err != nil {
			return BoundAssignments{}, err
		}
		rendered = append(rendered, m.dialect.QuoteIdentifier(field.MappedColumn())+" = "+marker.Placeholder())
	}

	return BoundAssignments{Assignments: rendered, Bindings: b}, nil
}

func (m *Mapper) embeddedAssignments(a Assignment, nested *schema.Entity, prefix string, b *Bindings) ([]string, error) {
	instance, err := embeddedInstance(a.Value, nested)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, prop := range nested.Properties() {
		if prop.IsEntity || prop.IsEmbedded || prop.IsCollection {
			continue
		}

		var value any
		if instance.IsValid() {
			value = prop.ValueOf(instance).Interface()
		}
		marker, err := m.bindValue(value, prop.ActualType(), b)
		if err != nil {
			return nil, err
		}
		out = append(out, m.dialect.QuoteIdentifier(prefix+prop.Column)+" = "+marker.Placeholder())
	}
	return out, nil
}

// bindValue converts a value through the converter registry and allocates
// its placeholder. Nulls bind with the hint's declared null type.
func (m *Mapper) bindValue(value any, hint reflect.Type, b *Bindings) (dialect.BindMarker, error) {
	value = normalizeValue(value)
	if value == nil {
		return b.BindNull(m.conversions.NullTypeFor(hint)), nil
	}

	converted, err := m.conversions.WriteValue(value)
	if err != nil {
		return dialect.BindMarker{}, err
	}
	return b.Bind(converted), nil
}

// columnSQL renders a resolved field's qualified, quoted column reference.
func (m *Mapper) columnSQL(table string, field schema.Field) string {
	qualifier := field.Qualifier()
	if qualifier == "" {
		qualifier = table
	}
	return m.dialect.QuoteIdentifier(qualify(qualifier, field.MappedColumn()))
}

func qualify(qualifier, column string) string {
	if qualifier == "" {
		return column
	}
	return qualifier + "." + column
}

// fieldLabel names a field for error messages.
func fieldLabel(f schema.Field) string {
	if p := f.Property(); p != nil {
		return p.Name
	}
	return f.MappedColumn()
}

// embeddedInstance unwraps a criteria value for an embedded predicate. A
// nil value yields an invalid reflect.Value, read as all-null sub-values.
func embeddedInstance(value any, nested *schema.Entity) (reflect.Value, error) {
	if value == nil {
		return reflect.Value{}, nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, nil
		}
		rv = rv.Elem()
	}
	if rv.Type() != nested.Type() {
		return reflect.Value{}, fmt.Errorf("embedded criteria on %s requires a %s value, got %T", nested.Name, nested.Type(), value)
	}
	return rv, nil
}

// normalizeValue unwraps pointer and interface indirection, mapping nil
// pointers to plain nil.
func normalizeValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// iterableElements expands slices and arrays into their elements. Byte
// slices and strings are treated as scalars.
func iterableElements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
