package convert

import (
	"fmt"
	"reflect"

	"github.com/gaborage/go-mortar/schema"
)

// Writer flattens typed instances into OutboundRows ready for parameter
// binding. Properties are written in metamodel order, null values stay
// typed, enums write their name, and collections convert element-wise.
// Cascading writes of associated entities are intentionally unsupported;
// aggregate persistence belongs to a higher layer. Writers are stateless
// and safe for concurrent use.
type Writer struct {
	registry    *schema.Registry
	conversions *Conversions
}

// NewWriter creates a writer over a schema registry and converter registry.
func NewWriter(registry *schema.Registry, conversions *Conversions) *Writer {
	if conversions == nil {
		conversions = NewConversions()
	}
	return &Writer{registry: registry, conversions: conversions}
}

var outboundRowType = reflect.TypeOf((*OutboundRow)(nil))

// Write flattens instance into row. A whole-entity write converter for the
// instance's runtime type bypasses structural writing entirely.
func (w *Writer) Write(instance any, row *OutboundRow) error {
	if instance == nil || row == nil {
		return ErrNilInstance
	}

	value := reflect.ValueOf(instance)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return ErrNilInstance
		}
		value = value.Elem()
	}

	// Whole-entity converter escape hatch.
	if conv, ok := w.conversions.WriteTargetTo(value.Type(), outboundRowType); ok {
		out, err := conv.Convert(value.Interface())
		if err != nil {
			return err
		}
		converted, ok := out.(*OutboundRow)
		if !ok {
			return fmt.Errorf("%w: entity converter for %s returned %T", ErrCannotConvert, value.Type(), out)
		}
		for _, column := range converted.Columns() {
			p, _ := converted.Get(column)
			row.Put(column, p)
		}
		return nil
	}

	entity, err := w.registry.EntityOf(value.Type())
	if err != nil {
		return err
	}
	return w.writeProperties(entity, value, row, "", true)
}

// writeProperties writes each property in declaration order. The root flag
// keeps identifier special-casing out of embedded recursion.
func (w *Writer) writeProperties(entity *schema.Entity, instance reflect.Value, row *OutboundRow, prefix string, root bool) error {
	for _, prop := range entity.Properties() {
		if !prop.Writable {
			continue
		}

		if root && prop.IsID {
			if err := w.writeIdentifier(entity, instance, row, prefix); err != nil {
				return err
			}
			continue
		}

		if err := w.writeProperty(entity, prop, instance, row, prefix); err != nil {
			return err
		}
	}
	return nil
}

// writeIdentifier reads the id through the dedicated identifier accessor
// and omits it entirely while it still holds its default (zero or nil)
// value, so generated-key inserts leave the column to the database.
func (w *Writer) writeIdentifier(entity *schema.Entity, instance reflect.Value, row *OutboundRow, prefix string) error {
	prop := entity.IDProperty()
	idValue, ok := entity.IDValue(instance)
	if !ok {
		return nil
	}
	if !idValue.IsValid() || idValue.IsZero() {
		return nil
	}

	converted, err := w.writeSimple(entity, prop, idValue.Interface())
	if err != nil {
		return err
	}
	row.Put(prefix+prop.Column, NewParameter(converted))
	return nil
}

// writeProperty writes one non-identifier property.
func (w *Writer) writeProperty(entity *schema.Entity, prop *schema.Property, instance reflect.Value, row *OutboundRow, prefix string) error {
	if prop.IsEmbedded {
		return w.writeEmbedded(entity, prop, instance, row, prefix)
	}

	// Entity references own no column on this row; the referenced table
	// carries the back-reference. A registered write converter overrides
	// the reference reading and persists the value into a single column.
	if prop.IsEntity {
		if _, ok := w.conversions.WriteTarget(prop.ActualType()); !ok {
			return nil
		}
	}

	value := prop.ValueOf(instance)
	column := prefix + prop.Column

	// Nil values write a typed null so drivers see the right SQL type.
	if !value.IsValid() || isNilValue(value) {
		row.Put(column, NullOf(w.conversions.NullTypeFor(prop.ActualType())))
		return nil
	}

	value = derefValue(value)

	switch {
	case prop.IsCollection:
		return w.writeCollection(entity, prop, value, row, column)
	case w.isSimpleProperty(prop, value):
		converted, err := w.writeSimple(entity, prop, value.Interface())
		if err != nil {
			return err
		}
		row.Put(column, NewParameter(converted))
		return nil
	default:
		// Complex non-collection values need a registered converter.
		if conv, ok := w.conversions.WriteTarget(value.Type()); ok {
			converted, err := conv.Convert(value.Interface())
			if err != nil {
				return mappingErr(entity.Name, prop.Name, column, err)
			}
			row.Put(column, NewParameter(converted))
			return nil
		}
		return mappingErr(entity.Name, prop.Name, column, ErrNestedEntity)
	}
}

// writeEmbedded flattens an embedded value object under its column prefix.
// A nil embedded pointer writes typed nulls for every sub-column.
func (w *Writer) writeEmbedded(entity *schema.Entity, prop *schema.Property, instance reflect.Value, row *OutboundRow, prefix string) error {
	nested, err := w.registry.EntityOf(prop.NestedType())
	if err != nil {
		return mappingErr(entity.Name, prop.Name, prefix+prop.EmbeddedPrefix, err)
	}

	value := prop.ValueOf(instance)
	if !value.IsValid() || isNilValue(value) {
		return w.writeNulls(nested, row, prefix+prop.EmbeddedPrefix)
	}

	return w.writeProperties(nested, derefValue(value), row, prefix+prop.EmbeddedPrefix, false)
}

// writeNulls emits typed nulls for every scalar column of an absent
// embedded object, descending into nested embeddings.
func (w *Writer) writeNulls(entity *schema.Entity, row *OutboundRow, prefix string) error {
	for _, sub := range entity.Properties() {
		if !sub.Writable || sub.IsEntity {
			continue
		}
		if sub.IsEmbedded {
			nested, err := w.registry.EntityOf(sub.NestedType())
			if err != nil {
				return err
			}
			if err := w.writeNulls(nested, row, prefix+sub.EmbeddedPrefix); err != nil {
				return err
			}
			continue
		}
		row.Put(prefix+sub.Column, NullOf(w.conversions.NullTypeFor(sub.ActualType())))
	}
	return nil
}

// writeCollection converts a collection element-wise. Elements must be
// simple or convertible; an element that is itself a collection is refused
// unless the declared element type is collection shaped.
func (w *Writer) writeCollection(entity *schema.Entity, prop *schema.Property, value reflect.Value, row *OutboundRow, column string) error {
	length := value.Len()
	out := make([]any, 0, length)

	for i := 0; i < length; i++ {
		elem := value.Index(i)
		if isNilValue(elem) {
			out = append(out, nil)
			continue
		}
		elem = derefValue(elem)

		if isCollectionType(elem.Type()) {
			return mappingErr(entity.Name, prop.Name, column, ErrNestedCollection)
		}

		converted, err := w.writeSimple(entity, prop, elem.Interface())
		if err != nil {
			return err
		}
		out = append(out, converted)
	}

	row.Put(column, Parameter{Value: out, Type: prop.Type})
	return nil
}

// writeSimple converts one value through the writer precedence chain:
// custom write converter, enum-as-name, passthrough. A complex value
// reaching passthrough is a hard error.
func (w *Writer) writeSimple(entity *schema.Entity, prop *schema.Property, v any) (any, error) {
	converted, err := w.conversions.WriteValue(v)
	if err != nil {
		return nil, mappingErr(entity.Name, prop.Name, prop.Column, err)
	}
	if converted != nil && !w.conversions.IsSimpleType(reflect.TypeOf(converted)) {
		return nil, mappingErr(entity.Name, prop.Name, prop.Column, ErrNestedEntity)
	}
	return converted, nil
}

// isSimpleProperty reports whether the held value writes as a single
// column without a dedicated complex-value converter.
func (w *Writer) isSimpleProperty(prop *schema.Property, value reflect.Value) bool {
	if prop.IsEntity || prop.IsMap {
		return false
	}
	return w.conversions.IsSimpleType(value.Type())
}

// isNilValue reports whether a reflect value holds nil.
func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// derefValue unwraps pointers and non-nil interfaces down to the held value.
func derefValue(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}
