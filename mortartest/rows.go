// Package mortartest provides helpers for testing code built on go-mortar:
// literal fake rows, a writer-to-reader round-trip adapter, normalized SQL
// assertions and sqlmock expectations wired from generated statements.
package mortartest

import (
	"slices"

	"github.com/gaborage/go-mortar/convert"
)

// Row builds a fake result row from column/value literals. The returned
// document serves as both convert.Row and convert.RowMetadata; columns are
// added in sorted order so Columns() is deterministic.
func Row(values map[string]any) *convert.RowDocument {
	doc := convert.NewRowDocument()
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	slices.Sort(columns)
	for _, column := range columns {
		doc.Put(column, values[column])
	}
	return doc
}

// RowFromOutbound replays a written row as an inbound result row, with
// typed nulls flattened to plain nils. Feeding a Writer's output through
// this adapter into a Reader exercises the write/read round trip without a
// database.
func RowFromOutbound(row *convert.OutboundRow) *convert.RowDocument {
	doc := convert.NewRowDocument()
	for _, column := range row.Columns() {
		p, _ := row.Get(column)
		doc.Put(column, p.Value)
	}
	return doc
}
