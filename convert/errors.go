package convert

import (
	"errors"
	"fmt"
)

// Sentinel errors for the read and write paths.
var (
	// ErrNoSuchColumn indicates a row was asked for a column it does not carry.
	ErrNoSuchColumn = errors.New("row has no column")

	// ErrNestedEntity indicates a complex value that cannot flatten into a
	// single column: no registered converter covers it, or a conversion
	// produced another complex value.
	ErrNestedEntity = errors.New("nested entities are not supported")

	// ErrNestedCollection indicates a collection element that is itself a
	// collection while the declared element type is not.
	ErrNestedCollection = errors.New("nested collections are not supported")

	// ErrCannotConvert indicates no conversion exists between two types.
	ErrCannotConvert = errors.New("no conversion available")

	// ErrNilInstance indicates a nil value was passed to the writer.
	ErrNilInstance = errors.New("cannot write nil instance")

	// ErrNotAnEntity indicates a read target that is neither a struct type
	// nor covered by a registered converter.
	ErrNotAnEntity = errors.New("target type is not a mapped entity")
)

// MappingError wraps a per-property failure with the entity, property and
// column it occurred on. A failed read never returns a partial entity; the
// first property error aborts the whole materialization.
type MappingError struct {
	Entity   string
	Property string
	Column   string
	Err      error
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping %s.%s from column %q: %v", e.Entity, e.Property, e.Column, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MappingError) Unwrap() error {
	return e.Err
}

// mappingErr builds a MappingError for one property.
func mappingErr(entity, property, column string, err error) error {
	return &MappingError{Entity: entity, Property: property, Column: column, Err: err}
}
