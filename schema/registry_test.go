package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRegistryCachesDescriptors(t *testing.T) {
	registry := NewRegistry(nil)

	first, err := registry.EntityOf(reflect.TypeOf(testPerson{}))
	require.NoError(t, err)
	second, err := registry.EntityOf(reflect.TypeOf(&testPerson{}))
	require.NoError(t, err)

	// Pointer and value types share one frozen descriptor.
	assert.Same(t, first, second)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry(nil)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			entity, err := registry.EntityOf(reflect.TypeOf(testPerson{}))
			if err != nil {
				return err
			}
			field := registry.Resolve(entity, "Nick.First")
			if got := field.MappedColumn(); got != "name_first" {
				return assert.AnError
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestRegisterStatic(t *testing.T) {
	registry := NewRegistry(nil)

	err := registry.RegisterStatic(Static{
		Type:  reflect.TypeOf(testPerson{}),
		Table: "people",
		Columns: []StaticColumn{
			{Field: "ID", Column: "person_id", ID: true},
			{Field: "Name", Column: "full_name"},
			{Field: "Nick", Column: "nick_", Embedded: true},
			{Field: "Total", Column: "total", ReadOnly: true},
		},
	})
	require.NoError(t, err)

	entity, err := registry.EntityOf(reflect.TypeOf(testPerson{}))
	require.NoError(t, err)

	assert.Equal(t, "people", entity.Table)
	assert.Len(t, entity.Properties(), 4)
	require.NotNil(t, entity.IDProperty())
	assert.Equal(t, "person_id", entity.IDProperty().Column)

	nick, ok := entity.Property("Nick")
	require.True(t, ok)
	assert.True(t, nick.IsEmbedded)
	assert.Equal(t, "nick_", nick.EmbeddedPrefix)

	total, ok := entity.Property("Total")
	require.True(t, ok)
	assert.False(t, total.Writable)
}

func TestRegisterStaticRejectsUnknownField(t *testing.T) {
	registry := NewRegistry(nil)

	err := registry.RegisterStatic(Static{
		Type:    reflect.TypeOf(testPerson{}),
		Columns: []StaticColumn{{Field: "Missing", Column: "missing"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestOfGenericLookup(t *testing.T) {
	registry := NewRegistry(nil)

	entity, err := Of[testPerson](registry)
	require.NoError(t, err)
	assert.Equal(t, "test_person", entity.Table)
}
