package schema

import (
	"reflect"
	"strings"
)

// Field is the result of resolving a property path expression against an
// entity. Resolution is best-effort: an unresolvable expression yields an
// unbound Field whose mapped column is the raw expression, treated as an
// unguaranteed-safe identifier. Callers that require a mapped property must
// check HasProperty themselves.
type Field struct {
	raw       string
	entity    *Entity
	property  *Property
	nested    *Entity
	prefix    string
	qualifier string
}

// Resolve binds a dotted path expression (for example "Address.City") to a
// property chain of entity. Multi-segment paths traverse embedded and
// one-to-one entity properties. A nil entity or a failed lookup degrades to
// an unbound Field rather than returning an error.
func (r *Registry) Resolve(entity *Entity, expr string) Field {
	field := Field{raw: expr, entity: entity}
	if entity == nil || expr == "" {
		return field
	}

	segments := strings.Split(expr, ".")
	current := entity
	prefix := ""
	qualifier := ""

	for i, segment := range segments {
		prop, ok := current.LookupProperty(segment)
		if !ok {
			return Field{raw: expr, entity: entity}
		}

		last := i == len(segments)-1
		if last {
			field.property = prop
			field.prefix = prefix
			field.qualifier = qualifier
			if prop.IsEmbedded {
				if nested, err := r.EntityOf(prop.NestedType()); err == nil {
					field.nested = nested
				}
			}
			return field
		}

		// Intermediate segments must lead somewhere structural.
		switch {
		case prop.IsEmbedded:
			nested, err := r.EntityOf(prop.NestedType())
			if err != nil {
				return Field{raw: expr, entity: entity}
			}
			prefix += prop.EmbeddedPrefix
			current = nested
		case prop.IsEntity && !prop.IsCollection:
			nested, err := r.EntityOf(prop.NestedType())
			if err != nil {
				return Field{raw: expr, entity: entity}
			}
			// Columns of a joined entity are addressed through its alias.
			qualifier = prop.Column
			prefix = ""
			current = nested
		default:
			return Field{raw: expr, entity: entity}
		}
	}
	return field
}

// HasProperty reports whether the expression resolved to a mapped property.
func (f Field) HasProperty() bool {
	return f.property != nil
}

// Property returns the leaf property, or nil for an unbound field.
func (f Field) Property() *Property {
	return f.property
}

// MappedColumn returns the physical column identifier, including any
// accumulated embedded prefix. Unbound fields return the raw expression.
func (f Field) MappedColumn() string {
	if f.property == nil {
		return f.raw
	}
	return f.prefix + f.property.Column
}

// Qualifier returns the join alias that owns the column, or the empty
// string when the column belongs to the root table.
func (f Field) Qualifier() string {
	return f.qualifier
}

// IsEmbedded reports whether the leaf property is an embedded value object.
func (f Field) IsEmbedded() bool {
	return f.property != nil && f.property.IsEmbedded
}

// EmbeddedEntity returns the entity behind an embedded leaf together with
// the full column prefix its sub-columns carry.
func (f Field) EmbeddedEntity() (*Entity, string, bool) {
	if f.nested == nil {
		return nil, "", false
	}
	return f.nested, f.prefix + f.property.EmbeddedPrefix, true
}

// TypeHint returns the leaf property's unwrapped value type, used for
// array and IN binding type inference. Interface-typed properties widen to
// nil since no concrete target can be chosen; unbound fields have no hint.
func (f Field) TypeHint() reflect.Type {
	if f.property == nil {
		return nil
	}
	t := f.property.ActualType()
	if t.Kind() == reflect.Interface {
		return nil
	}
	return t
}
