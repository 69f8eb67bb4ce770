package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Tag options recognized after the column name in a `db` tag.
const (
	optPK       = "pk"
	optVersion  = "version"
	optEmbedded = "embedded"
	optReadOnly = "readonly"
)

// parseEntity extracts entity metadata from a struct type using reflection.
// It processes `db:"column_name[,option...]"` tags; untagged exported fields
// map through the naming strategy.
//
// Returns an error if:
//   - t is not a struct type
//   - a db tag contains dangerous SQL characters
//   - an embedded option is applied to a non-struct field
//   - no mappable fields remain
func parseEntity(t reflect.Type, naming NamingStrategy) (*Entity, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrNotAStruct, t.Kind())
	}

	entity := &Entity{
		Name:       t.Name(),
		Table:      tableNameFor(t, naming),
		typ:        t,
		properties: make([]*Property, 0, t.NumField()),
		byName:     make(map[string]*Property),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}

		prop, err := parseProperty(field, i, tag, naming)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
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

	// Fail-fast if the struct exposes nothing to map
	if len(entity.properties) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, t.Name())
	}

	// Identifier convention: an untagged field named ID acts as the id
	// property when no field carries the pk option.
	if entity.id == nil {
		if p, ok := entity.byName["ID"]; ok && !p.IsEmbedded && !p.IsEntity {
			p.IsID = true
			entity.id = p
		}
	}

	return entity, nil
}

// parseProperty builds one property descriptor from a struct field.
func parseProperty(field reflect.StructField, index int, tag string, naming NamingStrategy) (*Property, error) {
	name, opts := splitTag(tag)

	// SECURITY: reject tag values that could smuggle SQL into identifiers.
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	prop := &Property{
		Name:       field.Name,
		FieldIndex: index,
		Type:       field.Type,
		Writable:   true,
		actualType: unwrapType(field.Type),
	}

	for _, opt := range opts {
		switch opt {
		case optPK:
			prop.IsID = true
		case optVersion:
			prop.IsVersion = true
		case optEmbedded:
			prop.IsEmbedded = true
		case optReadOnly:
			prop.Writable = false
		default:
			return nil, fmt.Errorf("%w: unknown option %q", ErrInvalidTag, opt)
		}
	}

	switch {
	case prop.IsEmbedded:
		// The tag value is the column prefix, possibly empty.
		nested := derefType(field.Type)
		if nested.Kind() != reflect.Struct || IsSimpleType(nested) {
			return nil, fmt.Errorf("%w: %s", ErrNotEmbeddable, field.Type)
		}
		prop.nestedType = nested
		prop.EmbeddedPrefix = name
		prop.Column = name
	case name != "":
		prop.Column = name
	default:
		prop.Column = naming.ColumnName(field.Name)
	}

	classifyType(prop)
	return prop, nil
}

// classifyType fills the structural flags derived from the field type.
func classifyType(prop *Property) {
	if prop.IsEmbedded {
		return
	}

	t := derefType(prop.Type)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return // []byte stays a plain column
		}
		prop.IsCollection = true
		elem := derefType(t.Elem())
		if elem.Kind() == reflect.Struct && !IsSimpleType(elem) {
			prop.IsEntity = true
			prop.nestedType = elem
		}
	case reflect.Map:
		prop.IsMap = true
	case reflect.Struct:
		if !IsSimpleType(t) {
			prop.IsEntity = true
			prop.nestedType = t
		}
	}
}

// splitTag separates the identifier part of a db tag from its options.
func splitTag(tag string) (name string, opts []string) {
	if tag == "" {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	return name, opts
}

// validateTagName checks for characters in db tags that could indicate SQL
// injection attempts or pre-quoted identifiers.
func validateTagName(name string) error {
	dangerous := []string{";", "--", "/*", "*/", " "}
	for _, d := range dangerous {
		if strings.Contains(name, d) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidTag, name, d)
		}
	}
	if strings.ContainsAny(name, `"'`) {
		return fmt.Errorf("%w: %q contains quotes (quoting is applied by the dialect)", ErrInvalidTag, name)
	}
	return nil
}

// tableNameFor resolves the table identifier for a type, honoring a
// TableName method on the type or its pointer.
func tableNameFor(t reflect.Type, naming NamingStrategy) string {
	if t.Implements(tableNamerType) {
		return reflect.New(t).Elem().Interface().(TableNamer).TableName()
	}
	if reflect.PointerTo(t).Implements(tableNamerType) {
		return reflect.New(t).Interface().(TableNamer).TableName()
	}
	return naming.TableName(t.Name())
}

var tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()

// derefType unwraps pointer types.
func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// unwrapType yields the value type a property ultimately holds: pointers are
// dereferenced and collection element types unwrapped.
func unwrapType(t reflect.Type) reflect.Type {
	t = derefType(t)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return t
		}
		return derefType(t.Elem())
	default:
		return t
	}
}
