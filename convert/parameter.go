package convert

import "reflect"

// Parameter is a bind-ready value paired with its declared type so null
// values stay typed for drivers that need the SQL type of a null bind.
type Parameter struct {
	// Value is the bind value; nil means a typed null.
	Value any
	// Type is the declared value type. It may be nil when the value was
	// built from an untyped nil.
	Type reflect.Type
}

// NewParameter wraps a value, deriving the declared type from it.
func NewParameter(v any) Parameter {
	if v == nil {
		return Parameter{}
	}
	return Parameter{Value: v, Type: reflect.TypeOf(v)}
}

// NullOf builds a typed null parameter.
func NullOf(t reflect.Type) Parameter {
	return Parameter{Type: t}
}

// IsNull reports whether the parameter carries no value.
func (p Parameter) IsNull() bool {
	return p.Value == nil
}

// IsZero reports whether the parameter is null or holds its type's zero
// value. Used for the "omit default-valued identifiers on insert" rule.
func (p Parameter) IsZero() bool {
	if p.Value == nil {
		return true
	}
	return reflect.ValueOf(p.Value).IsZero()
}

// OutboundRow is an ordered map from physical column identifier to a bind
// parameter. Iteration order is insertion order, which keeps generated
// column lists deterministic. An OutboundRow is owned by a single write
// operation and is not safe for concurrent use.
type OutboundRow struct {
	columns []string
	values  map[string]Parameter
}

// NewOutboundRow creates an empty row.
func NewOutboundRow() *OutboundRow {
	return &OutboundRow{values: make(map[string]Parameter)}
}

// Put stores a parameter under a column, keeping first-insertion order when
// a column is written twice.
func (r *OutboundRow) Put(column string, p Parameter) {
	if _, exists := r.values[column]; !exists {
		r.columns = append(r.columns, column)
	}
	r.values[column] = p
}

// Get returns the parameter stored under a column.
func (r *OutboundRow) Get(column string) (Parameter, bool) {
	p, ok := r.values[column]
	return p, ok
}

// Columns returns the column identifiers in insertion order. The returned
// slice must not be modified.
func (r *OutboundRow) Columns() []string {
	return r.columns
}

// Len returns the number of columns in the row.
func (r *OutboundRow) Len() int {
	return len(r.columns)
}
