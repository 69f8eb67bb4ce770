package query

import (
	"testing"

	"github.com/gaborage/go-mortar/convert"
	"github.com/gaborage/go-mortar/dialect"
	"github.com/gaborage/go-mortar/schema"
)

// person exercises explicit column naming. The tag value is taken verbatim,
// including its case.
type person struct {
	ID   int64  `db:"id,pk"`
	Name string `db:"THE_NAME"`
}

// customer is the flat three-column shape used by fold and derived-query
// tests.
type customer struct {
	ID        int64  `db:"id,pk"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// contactName flattens into its owner under the "name_" prefix.
type contactName struct {
	First string `db:"first"`
	Last  string `db:"last"`
}

type contact struct {
	ID   int64       `db:"id,pk"`
	Nick contactName `db:"name_,embedded"`
	Age  int         `db:"age"`
}

// device carries a boolean column for IS TRUE / IS FALSE mapping.
type device struct {
	ID     int64 `db:"id,pk"`
	Active bool  `db:"active"`
}

// color behaves like an enum: named string values write their name.
type color string

const colorMint color = "Mint"

type paint struct {
	ID    int64 `db:"id,pk"`
	Color color `db:"color"`
}

// address is the one-to-one reference target of employee.
type address struct {
	ID     int64  `db:"id,pk"`
	City   string `db:"city"`
	Street string `db:"street"`
}

type employee struct {
	ID      int64    `db:"id,pk"`
	Name    string   `db:"name"`
	Address *address `db:"address"`
	Tags    []string `db:"tags"`
}

// account carries an optimistic-lock version column.
type account struct {
	ID      int64 `db:"id,pk"`
	Balance int64 `db:"balance"`
	Version int64 `db:"version,version"`
}

func testRegistry() *schema.Registry {
	return schema.NewRegistry(nil)
}

func entityOf(t *testing.T, registry *schema.Registry, instance any) *schema.Entity {
	t.Helper()
	entity, err := registry.EntityOfValue(instance)
	if err != nil {
		t.Fatalf("entity of %T: %v", instance, err)
	}
	return entity
}

func pgMapper() (*Mapper, *schema.Registry) {
	registry := testRegistry()
	return NewMapper(registry, dialect.Postgres{}, convert.NewConversions()), registry
}

func oracleMapper() (*Mapper, *schema.Registry) {
	registry := testRegistry()
	d := dialect.OracleDialect{}
	return NewMapper(registry, d, convert.NewConversions(d.Converters()...)), registry
}
