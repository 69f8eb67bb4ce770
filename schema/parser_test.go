package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testName struct {
	First string `db:"first"`
	Last  string `db:"last"`
}

type testAddress struct {
	ID   int64  `db:"id,pk"`
	City string `db:"city"`
}

type testPerson struct {
	ID      int64    `db:"id,pk"`
	Name    string   `db:"the_name"`
	Age     int      ``
	Email   *string  `db:"email"`
	Nick    testName `db:"name_,embedded"`
	Address *testAddress
	Tags    []string `db:"tags"`
	Raw     []byte   `db:"raw"`
	Total   float64  `db:"total,readonly"`
	Version int32    `db:"lock_version,version"`
	hidden  string
	Skipped string `db:"-"`
}

func entityFor(t *testing.T, typ any) *Entity {
	t.Helper()
	entity, err := NewRegistry(nil).EntityOf(reflect.TypeOf(typ))
	require.NoError(t, err)
	return entity
}

func TestEntityOfMapsFields(t *testing.T) {
	entity := entityFor(t, testPerson{})

	assert.Equal(t, "testPerson", entity.Name)
	assert.Equal(t, "test_person", entity.Table)

	name, ok := entity.Property("Name")
	require.True(t, ok)
	assert.Equal(t, "the_name", name.Column)
	assert.True(t, name.Writable)

	// Untagged exported fields map through the naming strategy.
	age, ok := entity.Property("Age")
	require.True(t, ok)
	assert.Equal(t, "age", age.Column)

	// Unexported and explicitly ignored fields are skipped.
	_, ok = entity.Property("hidden")
	assert.False(t, ok)
	_, ok = entity.Property("Skipped")
	assert.False(t, ok)
}

func TestEntityOfPropertyOrder(t *testing.T) {
	entity := entityFor(t, testPerson{})

	var fields []string
	for _, p := range entity.Properties() {
		fields = append(fields, p.Name)
	}
	assert.Equal(t,
		[]string{"ID", "Name", "Age", "Email", "Nick", "Address", "Tags", "Raw", "Total", "Version"},
		fields,
	)
}

func TestEntityOfIdentifierAndVersion(t *testing.T) {
	entity := entityFor(t, testPerson{})

	require.NotNil(t, entity.IDProperty())
	assert.Equal(t, "id", entity.IDProperty().Column)
	require.NotNil(t, entity.VersionProperty())
	assert.Equal(t, "lock_version", entity.VersionProperty().Column)

	// A field named ID acts as the identifier when nothing carries pk.
	type implicit struct {
		ID   int64
		Name string
	}
	entity = entityFor(t, implicit{})
	require.NotNil(t, entity.IDProperty())
	assert.Equal(t, "id", entity.IDProperty().Column)
}

func TestEntityOfEmbedded(t *testing.T) {
	entity := entityFor(t, testPerson{})

	nick, ok := entity.Property("Nick")
	require.True(t, ok)
	assert.True(t, nick.IsEmbedded)
	assert.Equal(t, "name_", nick.EmbeddedPrefix)
	assert.Equal(t, reflect.TypeOf(testName{}), nick.NestedType())
	assert.False(t, nick.IsEntity)
}

func TestEntityOfEntityReference(t *testing.T) {
	entity := entityFor(t, testPerson{})

	addr, ok := entity.Property("Address")
	require.True(t, ok)
	assert.True(t, addr.IsEntity)
	assert.False(t, addr.IsEmbedded)
	assert.Equal(t, "address", addr.Column)
	assert.Equal(t, reflect.TypeOf(testAddress{}), addr.NestedType())
}

func TestEntityOfCollections(t *testing.T) {
	entity := entityFor(t, testPerson{})

	tags, ok := entity.Property("Tags")
	require.True(t, ok)
	assert.True(t, tags.IsCollection)
	assert.False(t, tags.IsEntity)
	assert.Equal(t, reflect.TypeOf(""), tags.ActualType())

	// []byte is a single column value, not a collection.
	raw, ok := entity.Property("Raw")
	require.True(t, ok)
	assert.False(t, raw.IsCollection)

	type withChildren struct {
		ID       int64
		Children []testAddress `db:"children"`
	}
	entity = entityFor(t, withChildren{})
	children, ok := entity.Property("Children")
	require.True(t, ok)
	assert.True(t, children.IsCollection)
	assert.True(t, children.IsEntity)
}

func TestEntityOfReadOnly(t *testing.T) {
	entity := entityFor(t, testPerson{})

	total, ok := entity.Property("Total")
	require.True(t, ok)
	assert.False(t, total.Writable)
}

func TestEntityOfRejectsBadInput(t *testing.T) {
	registry := NewRegistry(nil)

	tests := []struct {
		name    string
		typ     reflect.Type
		wantErr error
	}{
		{
			name:    "not a struct",
			typ:     reflect.TypeOf(42),
			wantErr: ErrNotAStruct,
		},
		{
			name: "no mappable fields",
			typ: reflect.TypeOf(struct {
				hidden string
			}{}),
			wantErr: ErrNoColumns,
		},
		{
			name: "dangerous tag",
			typ: reflect.TypeOf(struct {
				Name string `db:"name; DROP TABLE x"`
			}{}),
			wantErr: ErrInvalidTag,
		},
		{
			name: "pre-quoted tag",
			typ: reflect.TypeOf(struct {
				Name string `db:"\"name\""`
			}{}),
			wantErr: ErrInvalidTag,
		},
		{
			name: "unknown option",
			typ: reflect.TypeOf(struct {
				Name string `db:"name,bogus"`
			}{}),
			wantErr: ErrInvalidTag,
		},
		{
			name: "embedded scalar",
			typ: reflect.TypeOf(struct {
				Name string `db:"name_,embedded"`
			}{}),
			wantErr: ErrNotEmbeddable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.EntityOf(tt.typ)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type namedTable struct {
	ID int64 `db:"id,pk"`
}

func (namedTable) TableName() string { return "legacy_table" }

func TestEntityOfTableNameOverride(t *testing.T) {
	entity := entityFor(t, namedTable{})
	assert.Equal(t, "legacy_table", entity.Table)
}

func TestIsSimpleType(t *testing.T) {
	tests := []struct {
		name   string
		typ    reflect.Type
		simple bool
	}{
		{"string", reflect.TypeOf(""), true},
		{"int pointer", reflect.TypeOf((*int)(nil)), true},
		{"bytes", reflect.TypeOf([]byte(nil)), true},
		{"time", reflect.TypeOf(time.Time{}), true},
		{"uuid", reflect.TypeOf(uuid.UUID{}), true},
		{"struct", reflect.TypeOf(testName{}), false},
		{"string slice", reflect.TypeOf([]string(nil)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.simple, IsSimpleType(tt.typ))
		})
	}
}
