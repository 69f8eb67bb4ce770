package dialect

import "strconv"

// BindMarker is a single parameter placeholder in a generated statement.
// Position is 1-based and identifies the parameter's slot in the bound
// argument list regardless of the rendered syntax.
type BindMarker struct {
	placeholder string
	position    int
}

// Placeholder returns the marker's rendered form, e.g. "$3" or "?".
func (m BindMarker) Placeholder() string {
	return m.placeholder
}

// Position returns the marker's 1-based parameter position.
func (m BindMarker) Position() int {
	return m.position
}

// BindMarkers produces a sequential placeholder series for one statement.
// A fresh instance is obtained per statement from Dialect.BindMarkers; the
// counter is the only mutable state and is not safe for concurrent use.
type BindMarkers struct {
	prefix    string
	anonymous string
	count     int
}

// NewIndexedMarkers returns a sequence rendering prefix plus a 1-based
// index, e.g. "$1", "$2" or ":1", ":2".
func NewIndexedMarkers(prefix string) *BindMarkers {
	return &BindMarkers{prefix: prefix}
}

// NewAnonymousMarkers returns a sequence rendering the same token for every
// marker, e.g. "?". Positions still advance so bound values stay ordered.
func NewAnonymousMarkers(token string) *BindMarkers {
	return &BindMarkers{anonymous: token}
}

// Next allocates the next marker in the sequence.
func (b *BindMarkers) Next() BindMarker {
	b.count++
	if b.anonymous != "" {
		return BindMarker{placeholder: b.anonymous, position: b.count}
	}
	return BindMarker{placeholder: b.prefix + strconv.Itoa(b.count), position: b.count}
}

// Count returns how many markers have been allocated so far.
func (b *BindMarkers) Count() int {
	return b.count
}
