package schema

import "encoding/json"

// DumpedEntity is the serialized form of an entity descriptor. The
// go-mortar-schemagen tool reads a JSON array of these and emits a static
// registration file.
type DumpedEntity struct {
	Type    string         `json:"type"`
	Table   string         `json:"table"`
	Columns []DumpedColumn `json:"columns"`
}

// DumpedColumn is the serialized form of one mapped property. For embedded
// properties Column carries the embedded prefix.
type DumpedColumn struct {
	Field    string `json:"field"`
	Column   string `json:"column"`
	ID       bool   `json:"id,omitempty"`
	Version  bool   `json:"version,omitempty"`
	Embedded bool   `json:"embedded,omitempty"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

// Dump serializes entity descriptors to the JSON consumed by
// go-mortar-schemagen. Run it from a small program inside the package that
// owns the entities, where reflection over the real types is available.
func Dump(entities ...*Entity) ([]byte, error) {
	out := make([]DumpedEntity, 0, len(entities))
	for _, e := range entities {
		d := DumpedEntity{
			Type:    e.Name,
			Table:   e.Table,
			Columns: make([]DumpedColumn, 0, len(e.Properties())),
		}
		for _, p := range e.Properties() {
			column := p.Column
			if p.IsEmbedded {
				column = p.EmbeddedPrefix
			}
			d.Columns = append(d.Columns, DumpedColumn{
				Field:    p.Name,
				Column:   column,
				ID:       p.IsID,
				Version:  p.IsVersion,
				Embedded: p.IsEmbedded,
				ReadOnly: !p.Writable,
			})
		}
		out = append(out, d)
	}
	return json.MarshalIndent(out, "", "  ")
}
