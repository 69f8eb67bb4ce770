package convert

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/gaborage/go-mortar/schema"
)

// Reader materializes raw rows into typed instances. Custom converters
// short-circuit structural mapping, embedded and one-to-one properties are
// resolved recursively with column-name prefixes, and collections convert
// element-wise. Readers are stateless and safe for concurrent use.
type Reader struct {
	registry    *schema.Registry
	conversions *Conversions
}

// NewReader creates a reader over a schema registry and converter registry.
func NewReader(registry *schema.Registry, conversions *Conversions) *Reader {
	if conversions == nil {
		conversions = NewConversions()
	}
	return &Reader{registry: registry, conversions: conversions}
}

// Read materializes a row into a new instance of target. Metadata, when
// available, gates every column access so partial projections skip absent
// columns instead of failing. A per-property failure aborts the read; a
// partially populated instance is never returned.
func (r *Reader) Read(target reflect.Type, row Row, meta RowMetadata) (any, error) {
	if target == nil {
		return nil, ErrNotAnEntity
	}
	if row == nil {
		return nil, fmt.Errorf("cannot read %s from a nil row", target)
	}

	// Raw-row escape hatch: the caller wants the row representation itself.
	rowType := reflect.TypeOf(row)
	if rowType != nil && rowType.AssignableTo(target) {
		return row, nil
	}

	wantPtr := target.Kind() == reflect.Pointer
	base := target
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	// Whole-row converter escape hatch: lets callers map to arbitrary
	// shapes without entity semantics. Registered factories double as the
	// constructor-style instantiation path.
	if conv, ok := r.conversions.ReadTarget(rowType, base); ok {
		out, err := conv.Convert(row)
		if err != nil {
			return nil, err
		}
		return wrapPointer(reflect.ValueOf(out), wantPtr), nil
	}

	if base.Kind() != reflect.Struct || schema.IsSimpleType(base) {
		return nil, fmt.Errorf("%w: %s", ErrNotAnEntity, base)
	}

	entity, err := r.registry.EntityOf(base)
	if err != nil {
		return nil, err
	}

	instance, _, err := r.readEntity(entity, row, meta, "")
	if err != nil {
		return nil, err
	}
	return wrapPointer(instance, wantPtr), nil
}

// ReadEntity is the generic convenience form of Reader.Read.
func ReadEntity[T any](r *Reader, row Row, meta RowMetadata) (T, error) {
	var zero T
	out, err := r.Read(reflect.TypeOf((*T)(nil)).Elem(), row, meta)
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// ReadAll materializes every remaining row of a database/sql cursor into
// entities of type T and closes the cursor.
func ReadAll[T any](r *Reader, rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		doc, err := DocumentFromSQLRows(rows)
		if err != nil {
			return nil, err
		}
		entity, err := ReadEntity[T](r, doc, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

// readEntity populates a fresh instance of entity from the row, applying
// the column prefix to every access. The second result reports whether any
// mapped column was present with a non-null value, which drives the
// "absent nested object" rules.
func (r *Reader) readEntity(entity *schema.Entity, row Row, meta RowMetadata, prefix string) (reflect.Value, bool, error) {
	instance := reflect.New(entity.Type()).Elem()
	saw := false

	for _, prop := range entity.Properties() {
		present, err := r.readProperty(instance, entity, prop, row, meta, prefix)
		if err != nil {
			return reflect.Value{}, false, err
		}
		saw = saw || present
	}
	return instance, saw, nil
}

// readProperty reads one property into its field. It reports whether the
// property's column (or any nested column) was present and non-null.
func (r *Reader) readProperty(instance reflect.Value, entity *schema.Entity, prop *schema.Property, row Row, meta RowMetadata, prefix string) (bool, error) {
	switch {
	case prop.IsEmbedded:
		return r.readEmbedded(instance, entity, prop, row, meta, prefix)
	case prop.IsEntity && !prop.IsCollection:
		return r.readNestedEntity(instance, entity, prop, row, meta, prefix)
	case prop.IsEntity && prop.IsCollection:
		// Entity collections are loaded by separate queries outside this core.
		return false, nil
	}

	column := prefix + prop.Column
	if meta != nil && !meta.Contains(column) {
		// Partial projection: no value for this property, not an error.
		return false, nil
	}

	raw, err := row.Get(column)
	if err != nil {
		return false, mappingErr(entity.Name, prop.Name, column, err)
	}
	if raw == nil {
		return false, nil
	}

	value, err := r.readValue(raw, prop.Type)
	if err != nil {
		return false, mappingErr(entity.Name, prop.Name, column, err)
	}
	instance.Field(prop.FieldIndex).Set(value)
	return true, nil
}

// readEmbedded recurses into a flattened value object. When every embedded
// column is absent or null the field stays at its zero value, which leaves
// pointer-typed embeddings nil.
func (r *Reader) readEmbedded(instance reflect.Value, entity *schema.Entity, prop *schema.Property, row Row, meta RowMetadata, prefix string) (bool, error) {
	nested, err := r.registry.EntityOf(prop.NestedType())
	if err != nil {
		return false, mappingErr(entity.Name, prop.Name, prefix+prop.EmbeddedPrefix, err)
	}

	value, saw, err := r.readEntity(nested, row, meta, prefix+prop.EmbeddedPrefix)
	if err != nil {
		return false, err
	}
	if !saw {
		return false, nil
	}
	setField(instance.Field(prop.FieldIndex), value)
	return true, nil
}

// readNestedEntity resolves a one-to-one association read through aliased
// join columns. A null or absent nested identifier means the association is
// absent: the field stays nil rather than holding a zeroed object.
func (r *Reader) readNestedEntity(instance reflect.Value, entity *schema.Entity, prop *schema.Property, row Row, meta RowMetadata, prefix string) (bool, error) {
	nested, err := r.registry.EntityOf(prop.NestedType())
	if err != nil {
		return false, mappingErr(entity.Name, prop.Name, prop.Column, err)
	}

	nestedPrefix := prefix + prop.Column + "_"
	if id := nested.IDProperty(); id != nil {
		idColumn := nestedPrefix + id.Column
		if meta != nil && !meta.Contains(idColumn) {
			return false, nil
		}
		raw, err := row.Get(idColumn)
		if err != nil {
			return false, mappingErr(entity.Name, prop.Name, idColumn, err)
		}
		if raw == nil {
			return false, nil
		}
	}

	value, saw, err := r.readEntity(nested, row, meta, nestedPrefix)
	if err != nil {
		return false, err
	}
	if !saw {
		return false, nil
	}
	setField(instance.Field(prop.FieldIndex), value)
	return true, nil
}

// readValue converts a raw driver value to the declared property type.
// Conversion precedence: registered read converters, element-wise
// collection conversion, enum-by-name, then scalar coercion.
func (r *Reader) readValue(raw any, target reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(target), nil
	}

	if target.Kind() == reflect.Pointer {
		elem, err := r.readValue(raw, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	src := reflect.TypeOf(raw)
	if conv, ok := r.conversions.ReadTarget(src, target); ok {
		out, err := conv.Convert(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return r.coerceScalar(out, target)
	}

	if isCollectionType(src) {
		if !isCollectionType(target) && target.Kind() != reflect.Interface {
			return reflect.Value{}, fmt.Errorf("%w: %s into %s", ErrCannotConvert, src, target)
		}
		if isCollectionType(target) {
			return r.readCollection(raw, target)
		}
	}

	return r.coerceScalar(raw, target)
}

// readCollection converts collection-shaped raw data element-wise into the
// declared collection type.
func (r *Reader) readCollection(raw any, target reflect.Type) (reflect.Value, error) {
	src := reflect.ValueOf(raw)
	elemType := target.Elem()
	length := src.Len()

	var out reflect.Value
	switch target.Kind() {
	case reflect.Slice:
		out = reflect.MakeSlice(target, length, length)
	case reflect.Array:
		if target.Len() != length {
			return reflect.Value{}, fmt.Errorf("%w: %d elements into array of %d", ErrCannotConvert, length, target.Len())
		}
		out = reflect.New(target).Elem()
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s is not a collection", ErrCannotConvert, target)
	}

	for i := 0; i < length; i++ {
		elemRaw := src.Index(i).Interface()
		// A nested collection element is only legal when the declared
		// element type is itself collection shaped.
		if elemRaw != nil && isCollectionType(reflect.TypeOf(elemRaw)) &&
			!isCollectionType(elemType) && elemType.Kind() != reflect.Interface {
			return reflect.Value{}, fmt.Errorf("%w: element %d of %s", ErrNestedCollection, i, src.Type())
		}
		value, err := r.readValue(elemRaw, elemType)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(value)
	}
	return out, nil
}

// coerceScalar applies the default scalar coercion rules.
func (r *Reader) coerceScalar(raw any, target reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(target), nil
	}
	src := reflect.TypeOf(raw)
	value := reflect.ValueOf(raw)

	// Enums convert by name when the raw value is not already assignable.
	if isEnumString(target) && src != target {
		switch s := raw.(type) {
		case string:
			return reflect.ValueOf(s).Convert(target), nil
		case []byte:
			return reflect.ValueOf(string(s)).Convert(target), nil
		}
	}

	if src.AssignableTo(target) {
		return value, nil
	}

	if reflect.PointerTo(target).Implements(scannerType) {
		holder := reflect.New(target)
		if err := holder.Interface().(sql.Scanner).Scan(raw); err != nil {
			return reflect.Value{}, err
		}
		return holder.Elem(), nil
	}

	if src.ConvertibleTo(target) {
		// Refuse the integer-to-string rune conversion trap.
		if target.Kind() == reflect.String && isIntegerKind(src.Kind()) {
			return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrCannotConvert, src, target)
		}
		return value.Convert(target), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrCannotConvert, src, target)
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

// setField assigns a struct value to a field, wrapping it in a pointer when
// the field is pointer typed.
func setField(field reflect.Value, value reflect.Value) {
	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(value.Type())
		ptr.Elem().Set(value)
		field.Set(ptr)
		return
	}
	field.Set(value)
}

// wrapPointer boxes a value behind a pointer when the requested target was
// pointer typed.
func wrapPointer(value reflect.Value, wantPtr bool) any {
	if !wantPtr {
		return value.Interface()
	}
	if value.Kind() == reflect.Pointer {
		return value.Interface()
	}
	ptr := reflect.New(value.Type())
	ptr.Elem().Set(value)
	return ptr.Interface()
}

// isCollectionType reports whether t is slice or array shaped, excluding
// byte slices which map to single binary columns.
func isCollectionType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() != reflect.Uint8
}

// isIntegerKind reports integer kinds, signed or not.
func isIntegerKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uintptr
}
