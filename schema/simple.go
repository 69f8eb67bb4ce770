package schema

import (
	"database/sql/driver"
	"reflect"
	"time"

	"github.com/google/uuid"
)

var (
	timeType   = reflect.TypeOf(time.Time{})
	uuidType   = reflect.TypeOf(uuid.UUID{})
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
)

// simpleStructTypes lists struct types stored as single column values even
// though they are not scalars.
var simpleStructTypes = map[reflect.Type]struct{}{
	timeType: {},
	uuidType: {},
}

// IsSimpleType reports whether t is stored in a single column without
// structural mapping. Pointers are unwrapped first. Scalars, strings,
// []byte, time.Time, uuid.UUID and driver.Valuer implementors are simple;
// struct types outside that set are entity or embedded candidates.
func IsSimpleType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	case reflect.Slice, reflect.Array:
		return t.Elem().Kind() == reflect.Uint8
	}
	if _, ok := simpleStructTypes[t]; ok {
		return true
	}
	if t.Implements(valuerType) || reflect.PointerTo(t).Implements(valuerType) {
		return true
	}
	return false
}
