package schema

import "errors"

// Sentinel errors returned by entity parsing and lookup.
var (
	// ErrNotAStruct indicates the mapped type is not a struct or pointer to struct.
	ErrNotAStruct = errors.New("mapped type must be a struct")

	// ErrNoColumns indicates a struct produced no mappable properties.
	ErrNoColumns = errors.New("struct has no mappable fields")

	// ErrInvalidTag indicates a malformed or unsafe `db` tag.
	ErrInvalidTag = errors.New("invalid db tag")

	// ErrUnknownProperty indicates a property name lookup against an entity failed.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrNotEmbeddable indicates an embedded tag on a field whose type cannot be flattened.
	ErrNotEmbeddable = errors.New("embedded field must be a struct type")
)
