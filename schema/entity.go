// Package schema builds and caches persistent metadata for mapped struct
// types: table names, ordered property descriptors, id/version markers,
// embedded flattening prefixes and entity references. The descriptors are
// parsed once per type and shared read-only afterwards, so generated column
// order is deterministic across calls.
package schema

import (
	"fmt"
	"reflect"
)

// Entity describes one mapped struct type.
//
// Entities are immutable after construction and safe for concurrent use.
// Property order follows field declaration order, which fixes generated
// SQL column order.
type Entity struct {
	// Name is the Go type name.
	Name string
	// Table is the physical table identifier.
	Table string

	typ        reflect.Type
	properties []*Property
	byName     map[string]*Property
	id         *Property
	version    *Property
}

// Type returns the described struct type.
func (e *Entity) Type() reflect.Type {
	return e.typ
}

// Properties returns the ordered property descriptors. The returned slice
// must not be modified.
func (e *Entity) Properties() []*Property {
	return e.properties
}

// Property looks up a property by its logical (field) name.
func (e *Entity) Property(name string) (*Property, bool) {
	p, ok := e.byName[name]
	return p, ok
}

// RequiredProperty is like Property but returns ErrUnknownProperty when the
// name does not resolve.
func (e *Entity) RequiredProperty(name string) (*Property, error) {
	if p, ok := e.byName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, e.Name, name)
}

// LookupProperty finds a property by field name, falling back to the
// physical column name for raw-identifier callers.
func (e *Entity) LookupProperty(name string) (*Property, bool) {
	if p, ok := e.byName[name]; ok {
		return p, true
	}
	for _, p := range e.properties {
		if p.Column == name {
			return p, true
		}
	}
	return nil, false
}

// IDProperty returns the identifier property, or nil when the entity
// declares none.
func (e *Entity) IDProperty() *Property {
	return e.id
}

// VersionProperty returns the optimistic-lock version property, or nil.
func (e *Entity) VersionProperty() *Property {
	return e.version
}

// IDValue reads the identifier value from an instance through the dedicated
// id accessor. The second result is false when the entity has no id property.
func (e *Entity) IDValue(instance reflect.Value) (reflect.Value, bool) {
	if e.id == nil {
		return reflect.Value{}, false
	}
	return e.id.ValueOf(instance), true
}

// Property describes one mapped struct field.
type Property struct {
	// Name is the Go field name.
	Name string
	// Column is the physical column identifier. For embedded properties it
	// is the declared column prefix; for entity references it doubles as the
	// join alias and the nested column prefix (without the underscore).
	Column string
	// FieldIndex is the field's position in the declaring struct.
	FieldIndex int
	// Type is the declared field type.
	Type reflect.Type

	// IsID marks the identifier property.
	IsID bool
	// IsVersion marks the optimistic-lock version property.
	IsVersion bool
	// IsEmbedded marks a value object flattened into the owning table.
	IsEmbedded bool
	// IsEntity marks a reference to another mapped entity.
	IsEntity bool
	// IsCollection marks slice and array fields except []byte.
	IsCollection bool
	// IsMap marks map fields.
	IsMap bool
	// Writable is false for read-only (computed) columns.
	Writable bool

	// EmbeddedPrefix is the column prefix applied when flattening an
	// embedded property. Empty for everything else.
	EmbeddedPrefix string

	actualType reflect.Type
	nestedType reflect.Type
}

// ActualType returns the element type for collections and the pointed-to
// type for pointers; otherwise the declared type.
func (p *Property) ActualType() reflect.Type {
	return p.actualType
}

// NestedType returns the struct type behind an embedded or entity property,
// with pointers unwrapped. It is nil for plain properties.
func (p *Property) NestedType() reflect.Type {
	return p.nestedType
}

// ValueOf reads the property's value from an instance. The instance may be
// addressable or not; pointers are dereferenced first. A nil instance yields
// an invalid value.
func (p *Property) ValueOf(instance reflect.Value) reflect.Value {
	for instance.Kind() == reflect.Pointer {
		if instance.IsNil() {
			return reflect.Value{}
		}
		instance = instance.Elem()
	}
	if !instance.IsValid() {
		return reflect.Value{}
	}
	return instance.Field(p.FieldIndex)
}
