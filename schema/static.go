package schema

import (
	"fmt"
	"reflect"
)

// Static is a pre-built entity description registered without tag parsing.
// Generated registration files (see tools/schemagen) produce these so hot
// paths never touch struct tags at runtime.
type Static struct {
	// Type is the mapped struct type.
	Type reflect.Type
	// Table overrides the naming-strategy table name when non-empty.
	Table string
	// Columns describe the mapped fields in declaration order.
	Columns []StaticColumn
}

// StaticColumn describes one field of a static entity registration.
type StaticColumn struct {
	// Field is the Go field name; it must exist on the registered type.
	Field string
	// Column is the physical identifier, or the embedded prefix when
	// Embedded is set.
	Column string

	ID       bool
	Version  bool
	Embedded bool
	ReadOnly bool
}

// RegisterStatic installs a pre-built entity descriptor, bypassing the
// reflection tag parser. Registration replaces any cached descriptor for
// the type and should happen before first use, typically from an init
// function in generated code.
func (r *Registry) RegisterStatic(s Static) error {
	t := s.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return ErrNotAStruct
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: %s", ErrNoColumns, t.Name())
	}

	table := s.Table
	if table == "" {
		table = tableNameFor(t, r.naming)
	}

	entity := &Entity{
		Name:       t.Name(),
		Table:      table,
		typ:        t,
		properties: make([]*Property, 0, len(s.Columns)),
		byName:     make(map[string]*Property, len(s.Columns)),
	}

	for _, col := range s.Columns {
		field, ok := t.FieldByName(col.Field)
		if !ok || len(field.Index) != 1 {
			return fmt.Errorf("%w: %s has no field %q", ErrUnknownProperty, t.Name(), col.Field)
		}
		if err := validateTagName(col.Column); err != nil {
			return err
		}

		prop := &Property{
			Name:       field.Name,
			Column:     col.Column,
			FieldIndex: field.Index[0],
			Type:       field.Type,
			IsID:       col.ID,
			IsVersion:  col.Version,
			IsEmbedded: col.Embedded,
			Writable:   !col.ReadOnly,
			actualType: unwrapType(field.Type),
		}
		if col.Embedded {
			nested := derefType(field.Type)
			if nested.Kind() != reflect.Struct || IsSimpleType(nested) {
				return fmt.Errorf("%w: %s", ErrNotEmbeddable, field.Type)
			}
			prop.nestedType = nested
			prop.EmbeddedPrefix = col.Column
		} else {
			classifyType(prop)
		}

		entity.properties = append(entity.properties, prop)
		entity.byName[prop.Name] = prop
		if prop.IsID {
			entity.id = prop
		}
		if prop.IsVersion {
			entity.version = prop
		}
	}

	r.entities.Store(t, entity)
	return nil
}
