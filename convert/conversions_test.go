package convert

import (
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionsPrecedenceFollowsRegistrationOrder(t *testing.T) {
	first := ReadAs(func(s string) (int, error) { return 1, nil })
	second := ReadAs(func(s string) (int, error) { return 2, nil })

	c := NewConversions(first, second)

	conv, ok := c.ReadTarget(reflect.TypeOf(""), reflect.TypeOf(0))
	require.True(t, ok)

	out, err := conv.Convert("x")
	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestConversionsInterfaceSource(t *testing.T) {
	c := NewConversions(ReadAs(func(r Row) (string, error) { return "row", nil }))

	conv, ok := c.ReadTarget(reflect.TypeOf(&RowDocument{}), reflect.TypeOf(""))
	require.True(t, ok)

	out, err := conv.Convert(NewRowDocument())
	require.NoError(t, err)
	assert.Equal(t, "row", out)
}

func TestConversionsSimpleTypes(t *testing.T) {
	c := NewConversions()

	assert.True(t, c.IsSimpleType(reflect.TypeOf("")))
	assert.True(t, c.IsSimpleType(reflect.TypeOf(time.Time{})))
	assert.True(t, c.IsSimpleType(reflect.TypeOf(uuid.Nil)))
	assert.False(t, c.IsSimpleType(reflect.TypeOf(fullName{})))

	// A registered write target makes a type simple.
	c = NewConversions(WriteAs(func(n fullName) (string, error) { return n.First, nil }))
	assert.True(t, c.IsSimpleType(reflect.TypeOf(fullName{})))

	// As does explicit registration.
	c = NewConversions()
	c.RegisterSimpleTypes(reflect.TypeOf(fullName{}))
	assert.True(t, c.IsSimpleType(reflect.TypeOf(fullName{})))
}

func TestConversionsNullTypeFor(t *testing.T) {
	c := NewConversions(WriteAs(func(u uuid.UUID) (string, error) { return u.String(), nil }))

	assert.Equal(t, reflect.TypeOf(""), c.NullTypeFor(reflect.TypeOf(mediaCondition(""))))
	assert.Equal(t, reflect.TypeOf(""), c.NullTypeFor(reflect.TypeOf(uuid.Nil)))
	assert.Equal(t, reflect.TypeOf(0), c.NullTypeFor(reflect.TypeOf(0)))
}

func TestConversionsWriteValue(t *testing.T) {
	c := NewConversions()

	got, err := c.WriteValue(conditionMint)
	require.NoError(t, err)
	assert.Equal(t, "Mint", got)

	got, err = c.WriteValue(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = c.WriteValue(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocumentFromSQLRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, title FROM album").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(7), []byte("Blue Train")))

	rows, err := db.Query("SELECT id, title FROM album")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	doc, err := DocumentFromSQLRows(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "title"}, doc.Columns())

	id, err := doc.Get("id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	title, err := doc.Get("title")
	require.NoError(t, err)
	assert.Equal(t, []byte("Blue Train"), title)

	require.NoError(t, mock.ExpectationsWereMet())
}
