package query

import (
	"reflect"

	"github.com/gaborage/go-mortar/convert"
	"github.com/gaborage/go-mortar/dialect"
)

// Bindings accumulates the bound parameters of one statement in placeholder
// order. It owns the statement's bind marker sequence, so every clause of a
// multi-part statement (UPDATE assignments, then WHERE) draws from the same
// numbering. A Bindings belongs to exactly one in-flight statement build and
// is not safe for concurrent use.
type Bindings struct {
	markers *dialect.BindMarkers
	params  []convert.Parameter
}

// NewBindings starts an empty parameter list using the dialect's marker
// syntax.
func NewBindings(d dialect.Dialect) *Bindings {
	return &Bindings{markers: d.BindMarkers()}
}

// Bind allocates the next placeholder for a non-null value.
func (b *Bindings) Bind(value any) dialect.BindMarker {
	b.params = append(b.params, convert.NewParameter(value))
	return b.markers.Next()
}

// BindNull allocates the next placeholder for a typed null. A nil type
// binds an untyped null.
func (b *Bindings) BindNull(t reflect.Type) dialect.BindMarker {
	b.params = append(b.params, convert.NullOf(t))
	return b.markers.Next()
}

// BindParameter allocates the next placeholder for a prepared parameter,
// preserving its null typing.
func (b *Bindings) BindParameter(p convert.Parameter) dialect.BindMarker {
	b.params = append(b.params, p)
	return b.markers.Next()
}

// Values returns the bound arguments in placeholder order. Nulls surface as
// untyped nils, which database/sql drivers bind as SQL NULL.
func (b *Bindings) Values() []any {
	out := make([]any, len(b.params))
	for i, p := range b.params {
		if p.IsNull() {
			out[i] = nil
			continue
		}
		out[i] = p.Value
	}
	return out
}

// Parameters returns the bound parameters with their declared types, for
// drivers that need typed nulls.
func (b *Bindings) Parameters() []convert.Parameter {
	return b.params
}

// Len returns how many parameters have been bound.
func (b *Bindings) Len() int {
	return len(b.params)
}

// BoundCondition pairs a mapped condition tree with the bindings its
// placeholders refer to.
type BoundCondition struct {
	Condition Condition
	Bindings  *Bindings
}

// SQL renders the condition text.
func (bc BoundCondition) SQL() string {
	return Render(bc.Condition)
}

// BoundAssignments pairs rendered SET assignments with the bindings their
// placeholders refer to.
type BoundAssignments struct {
	Assignments []string
	Bindings    *Bindings
}
