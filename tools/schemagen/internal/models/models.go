// Package models mirrors the JSON schema dump emitted by
// go-mortar's schema.Dump, so the tool decodes dumps without importing the
// library it generates for.
package models

// Entity is one dumped entity descriptor.
type Entity struct {
	Type    string   `json:"type"`
	Table   string   `json:"table"`
	Columns []Column `json:"columns"`
}

// Column is one dumped property. For embedded properties Column carries
// the embedded prefix.
type Column struct {
	Field    string `json:"field"`
	Column   string `json:"column"`
	ID       bool   `json:"id"`
	Version  bool   `json:"version"`
	Embedded bool   `json:"embedded"`
	ReadOnly bool   `json:"readOnly"`
}
