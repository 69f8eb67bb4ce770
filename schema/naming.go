package schema

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// NamingStrategy derives physical identifiers from Go names for fields
// that carry no explicit `db` tag and for types without a TableName method.
type NamingStrategy interface {
	// TableName maps a Go type name to a table identifier.
	TableName(typeName string) string
	// ColumnName maps a Go field name to a column identifier.
	ColumnName(fieldName string) string
}

// SnakeCase converts CamelCase Go names to snake_case identifiers,
// keeping acronym runs intact (UserID becomes user_id). It is the
// default strategy.
type SnakeCase struct{}

// TableName returns the snake_case form of typeName.
func (SnakeCase) TableName(typeName string) string {
	return underscore(typeName)
}

// ColumnName returns the snake_case form of fieldName.
func (SnakeCase) ColumnName(fieldName string) string {
	return underscore(fieldName)
}

// Pluralized is SnakeCase with pluralized table names (Person maps to
// people), the convention relational schemas inherited from Rails.
type Pluralized struct {
	SnakeCase
}

// TableName returns the pluralized snake_case form of typeName.
func (Pluralized) TableName(typeName string) string {
	return inflect.Pluralize(underscore(typeName))
}

// AsIs uses Go names verbatim, lowercasing only the first rune of type
// names so generated table identifiers do not require quoting.
type AsIs struct{}

// TableName returns typeName with a lowercased first rune.
func (AsIs) TableName(typeName string) string {
	if typeName == "" {
		return typeName
	}
	return strings.ToLower(typeName[:1]) + typeName[1:]
}

// ColumnName returns fieldName unchanged.
func (AsIs) ColumnName(fieldName string) string {
	return fieldName
}

// TableNamer lets a mapped type override the strategy-derived table name.
type TableNamer interface {
	TableName() string
}

// underscore converts a CamelCase name to snake_case. A boundary is
// inserted before an uppercase rune that follows a lowercase rune and
// before the last rune of an acronym run followed by a lowercase rune.
func underscore(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(runes) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			acronymEnd := i > 0 && i+1 < len(runes) &&
				unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])
			if prevLower || acronymEnd {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
