package schema

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry caches parsed entities by type. Parsing happens once per type;
// after that, lookups are lock-free reads. Registries are safe for
// concurrent use.
type Registry struct {
	naming   NamingStrategy
	entities sync.Map // reflect.Type -> *Entity
}

// NewRegistry creates a registry using the given naming strategy. A nil
// strategy defaults to SnakeCase.
func NewRegistry(naming NamingStrategy) *Registry {
	if naming == nil {
		naming = SnakeCase{}
	}
	return &Registry{naming: naming}
}

// Naming returns the registry's naming strategy.
func (r *Registry) Naming() NamingStrategy {
	return r.naming
}

// EntityOf returns the entity descriptor for t, parsing and caching it on
// first use. Pointer types resolve to their element type's entity.
func (r *Registry) EntityOf(t reflect.Type) (*Entity, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, ErrNotAStruct
	}

	if cached, ok := r.entities.Load(t); ok {
		return cached.(*Entity), nil
	}

	entity, err := parseEntity(t, r.naming)
	if err != nil {
		return nil, err
	}

	// First writer wins so concurrent parses of the same type converge on
	// one shared descriptor.
	actual, _ := r.entities.LoadOrStore(t, entity)
	return actual.(*Entity), nil
}

// EntityOfValue resolves the entity for a value's dynamic type.
func (r *Registry) EntityOfValue(v any) (*Entity, error) {
	if v == nil {
		return nil, ErrNotAStruct
	}
	return r.EntityOf(reflect.TypeOf(v))
}

// MustEntityOf is like EntityOf but panics on parse failure. Intended for
// package-level registrations where a bad mapping is a programming error.
func (r *Registry) MustEntityOf(t reflect.Type) *Entity {
	entity, err := r.EntityOf(t)
	if err != nil {
		panic(fmt.Sprintf("schema: cannot map %s: %v", t, err))
	}
	return entity
}

// Of resolves the entity descriptor for T against a registry.
func Of[T any](r *Registry) (*Entity, error) {
	return r.EntityOf(reflect.TypeOf((*T)(nil)).Elem())
}
