package convert

import (
	"database/sql"
	"fmt"
)

// Row is the minimal read surface of one result row. Driver adapters
// implement it over their native row types.
type Row interface {
	// Get returns the raw driver value of a column. Asking for a column the
	// row does not contain is an error; callers consult RowMetadata first
	// when partial projections are possible.
	Get(name string) (any, error)
}

// RowMetadata reports which columns a row actually carries, enabling
// partial-projection reads that skip absent columns instead of failing.
type RowMetadata interface {
	Contains(name string) bool
	Columns() []string
}

// RowDocument is a flat column-to-raw-value map implementing both Row and
// RowMetadata. It serves as the converter-friendly intermediate between raw
// driver rows and entity materialization, and as the test double for rows.
type RowDocument struct {
	columns []string
	values  map[string]any
}

// NewRowDocument creates an empty document.
func NewRowDocument() *RowDocument {
	return &RowDocument{values: make(map[string]any)}
}

// DocumentOf builds a document from a column-to-value map. Column order
// follows map iteration and is therefore unspecified; use Put when order
// matters.
func DocumentOf(values map[string]any) *RowDocument {
	doc := NewRowDocument()
	for name, v := range values {
		doc.Put(name, v)
	}
	return doc
}

// Put stores a raw value under a column name.
func (d *RowDocument) Put(name string, v any) {
	if _, exists := d.values[name]; !exists {
		d.columns = append(d.columns, name)
	}
	d.values[name] = v
}

// Get returns the raw value of a column.
func (d *RowDocument) Get(name string) (any, error) {
	v, ok := d.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchColumn, name)
	}
	return v, nil
}

// Contains reports whether the document carries a column.
func (d *RowDocument) Contains(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Columns returns the column names in insertion order.
func (d *RowDocument) Columns() []string {
	return d.columns
}

// DocumentFromSQLRows captures the current row of a database/sql cursor
// into a RowDocument. The cursor must be positioned on a row (rows.Next
// returned true). Byte slices are copied since drivers may reuse buffers
// between rows.
func DocumentFromSQLRows(rows *sql.Rows) (*RowDocument, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading row columns: %w", err)
	}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return nil, fmt.Errorf("scanning row: %w", err)
	}

	doc := NewRowDocument()
	for i, name := range columns {
		v := values[i]
		if b, ok := v.([]byte); ok {
			copied := make([]byte, len(b))
			copy(copied, b)
			v = copied
		}
		doc.Put(name, v)
	}
	return doc, nil
}
