// Package convert implements the value conversion layer between Go structs
// and database rows: a registry of custom converters with
// custom-beats-default precedence, the entity reader that materializes rows
// into typed instances, and the entity writer that flattens instances into
// bind-ready outbound rows.
package convert

import (
	"fmt"
	"reflect"

	"github.com/gaborage/go-mortar/schema"
)

// Converter is a registrable conversion. The concrete kinds are
// ReadConverter (database value to Go value) and WriteConverter (Go value to
// database value).
type Converter interface {
	isConverter()
}

// ReadConverter turns a raw driver value into a Go value.
type ReadConverter struct {
	Source  reflect.Type
	Target  reflect.Type
	Convert func(any) (any, error)
}

func (ReadConverter) isConverter() {}

// WriteConverter turns a Go value into its database representation.
type WriteConverter struct {
	Source  reflect.Type
	Target  reflect.Type
	Convert func(any) (any, error)
}

func (WriteConverter) isConverter() {}

// ReadAs builds a typed read converter from a plain function.
func ReadAs[S, T any](fn func(S) (T, error)) ReadConverter {
	return ReadConverter{
		Source:  typeOf[S](),
		Target:  typeOf[T](),
		Convert: adapt(fn),
	}
}

// WriteAs builds a typed write converter from a plain function.
func WriteAs[S, T any](fn func(S) (T, error)) WriteConverter {
	return WriteConverter{
		Source:  typeOf[S](),
		Target:  typeOf[T](),
		Convert: adapt(fn),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func adapt[S, T any](fn func(S) (T, error)) func(any) (any, error) {
	return func(v any) (any, error) {
		s, ok := v.(S)
		if !ok {
			return nil, fmt.Errorf("%w: converter expects %s, got %T", ErrCannotConvert, typeOf[S](), v)
		}
		return fn(s)
	}
}

// Conversions is the ordered converter registry consulted by the reader,
// the writer and the condition mapper before any default coercion runs.
// Earlier registrations win, so user converters passed ahead of
// dialect-supplied ones take precedence.
//
// A Conversions value follows a build-then-freeze discipline: register
// everything before first use, then share it read-only.
type Conversions struct {
	reads  []ReadConverter
	writes []WriteConverter
	simple map[reflect.Type]struct{}
}

// NewConversions builds a registry from the given converters, preserving
// their order for precedence.
func NewConversions(converters ...Converter) *Conversions {
	c := &Conversions{simple: make(map[reflect.Type]struct{})}
	for _, conv := range converters {
		switch v := conv.(type) {
		case ReadConverter:
			c.reads = append(c.reads, v)
		case WriteConverter:
			c.writes = append(c.writes, v)
		}
	}
	return c
}

// RegisterSimpleTypes marks additional types as single-column values. Must
// be called before the registry is shared.
func (c *Conversions) RegisterSimpleTypes(types ...reflect.Type) {
	for _, t := range types {
		c.simple[t] = struct{}{}
	}
}

// IsSimpleType reports whether t is stored in a single column: the built-in
// simple set, explicitly registered types, and any type with a custom write
// target qualify.
func (c *Conversions) IsSimpleType(t reflect.Type) bool {
	if schema.IsSimpleType(t) {
		return true
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if _, ok := c.simple[t]; ok {
		return true
	}
	_, ok := c.WriteTarget(t)
	return ok
}

// HasReadTarget reports whether a read converter exists for (src, dst).
func (c *Conversions) HasReadTarget(src, dst reflect.Type) bool {
	_, ok := c.ReadTarget(src, dst)
	return ok
}

// ReadTarget returns the first read converter matching (src, dst). Exact
// type pairs win over interface-satisfying matches.
func (c *Conversions) ReadTarget(src, dst reflect.Type) (ReadConverter, bool) {
	for _, conv := range c.reads {
		if conv.Source == src && conv.Target == dst {
			return conv, true
		}
	}
	for _, conv := range c.reads {
		if sourceMatches(conv.Source, src) && targetMatches(conv.Target, dst) {
			return conv, true
		}
	}
	return ReadConverter{}, false
}

// HasWriteTarget reports whether any write converter accepts src.
func (c *Conversions) HasWriteTarget(src reflect.Type) bool {
	_, ok := c.WriteTarget(src)
	return ok
}

// WriteTarget returns the first write converter accepting src.
func (c *Conversions) WriteTarget(src reflect.Type) (WriteConverter, bool) {
	for _, conv := range c.writes {
		if conv.Source == src {
			return conv, true
		}
	}
	for _, conv := range c.writes {
		if sourceMatches(conv.Source, src) {
			return conv, true
		}
	}
	return WriteConverter{}, false
}

// WriteTargetTo returns the first write converter mapping src to dst.
func (c *Conversions) WriteTargetTo(src, dst reflect.Type) (WriteConverter, bool) {
	for _, conv := range c.writes {
		if conv.Source == src && conv.Target == dst {
			return conv, true
		}
	}
	for _, conv := range c.writes {
		if sourceMatches(conv.Source, src) && targetMatches(conv.Target, dst) {
			return conv, true
		}
	}
	return WriteConverter{}, false
}

// WriteValue converts a Go value to its database representation: a
// registered write converter first, then enum-name rendering for named
// string types, then passthrough.
func (c *Conversions) WriteValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	src := reflect.TypeOf(v)
	if conv, ok := c.WriteTarget(src); ok {
		return conv.Convert(v)
	}
	if isEnumString(src) {
		return reflect.ValueOf(v).String(), nil
	}
	return v, nil
}

// NullTypeFor resolves the declared type a null value binds as: the custom
// write target when one is registered, the string type for named string
// (enum) types, otherwise the declared type itself.
func (c *Conversions) NullTypeFor(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if conv, ok := c.WriteTarget(t); ok && conv.Target != nil {
		return conv.Target
	}
	if isEnumString(t) {
		return stringType
	}
	return t
}

var stringType = reflect.TypeOf("")

// isEnumString reports whether t is a named string type, written and read
// by name like an enum.
func isEnumString(t reflect.Type) bool {
	return t.Kind() == reflect.String && t != stringType
}

// sourceMatches reports whether an actual source type satisfies a
// registered source, allowing interface-typed registrations.
func sourceMatches(registered, actual reflect.Type) bool {
	if registered == actual {
		return true
	}
	if registered.Kind() == reflect.Interface {
		return actual.Implements(registered)
	}
	return false
}

// targetMatches reports whether a converter's output type satisfies the
// requested target.
func targetMatches(produced, requested reflect.Type) bool {
	return produced == requested || produced.AssignableTo(requested)
}
