package postgresql

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/gaborage/go-mortar/convert"
)

// Document captures the current row of a pgx cursor into a RowDocument.
// The cursor must be positioned on a row (rows.Next returned true). Byte
// slices are copied since the driver may reuse its read buffer.
func Document(rows pgx.Rows) (*convert.RowDocument, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("reading row values: %w", err)
	}

	doc := convert.NewRowDocument()
	for i, fd := range rows.FieldDescriptions() {
		v := values[i]
		if b, ok := v.([]byte); ok {
			copied := make([]byte, len(b))
			copy(copied, b)
			v = copied
		}
		doc.Put(fd.Name, v)
	}
	return doc, nil
}

// ReadAll materializes every remaining row of a pgx cursor into entities of
// type T and closes the cursor.
func ReadAll[T any](r *convert.Reader, rows pgx.Rows) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		doc, err := Document(rows)
		if err != nil {
			return nil, err
		}
		entity, err := convert.ReadEntity[T](r, doc, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

// Array wraps a Go slice for binding as a single PostgreSQL array parameter
// in hand-written statements. Generated statements wrap collection columns
// automatically.
func Array(v any) interface {
	driver.Valuer
	sql.Scanner
} {
	return pq.Array(v)
}
