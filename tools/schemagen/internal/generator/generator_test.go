package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-mortar/tools/schemagen/internal/models"
)

func sampleEntities() []models.Entity {
	return []models.Entity{
		{
			Type:  "User",
			Table: "users",
			Columns: []models.Column{
				{Field: "ID", Column: "id", ID: true},
				{Field: "Name", Column: "name"},
				{Field: "Contact", Column: "contact_", Embedded: true},
				{Field: "Total", Column: "total", ReadOnly: true},
			},
		},
		{
			Type:  "Account",
			Table: "accounts",
			Columns: []models.Column{
				{Field: "ID", Column: "id", ID: true},
				{Field: "Revision", Column: "revision", Version: true},
			},
		},
	}
}

// flatten collapses gofmt alignment so fragment assertions are stable.
func flatten(code string) string {
	return strings.Join(strings.Fields(code), " ")
}

func TestFile(t *testing.T) {
	f, err := File("store", sampleEntities())
	require.NoError(t, err)

	code := flatten(f.GoString())
	assert.Contains(t, code, "// Code generated by go-mortar-schemagen. DO NOT EDIT.")
	assert.Contains(t, code, "package store")
	assert.Contains(t, code, "func RegisterStaticSchemas(r *schema.Registry) error {")
	assert.Contains(t, code, `"github.com/gaborage/go-mortar/schema"`)
	assert.Contains(t, code, "reflect.TypeOf(User{})")
	assert.Contains(t, code, "reflect.TypeOf(Account{})")
	assert.Contains(t, code, `Table: "users"`)
	assert.Contains(t, code, "Columns: []schema.StaticColumn{")
	assert.Contains(t, code, `Field: "ID"`)
	assert.Contains(t, code, "ID: true")
	assert.Contains(t, code, "Embedded: true")
	assert.Contains(t, code, "Version: true")
	assert.Contains(t, code, "ReadOnly: true")
	assert.Contains(t, code, `return fmt.Errorf("User: %w", err)`)
	assert.Contains(t, code, "return nil")
}

func TestFileRequiresPackage(t *testing.T) {
	_, err := File("", sampleEntities())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package name")
}

func TestFileRequiresEntities(t *testing.T) {
	_, err := File("store", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntities)
}

func TestFileRejectsIncompleteDump(t *testing.T) {
	_, err := File("store", []models.Entity{{Table: "users"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type name")

	_, err = File("store", []models.Entity{{Type: "User", Table: "users"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")
}
