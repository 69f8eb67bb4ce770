package convert

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-mortar/schema"
)

type mediaCondition string

const conditionMint mediaCondition = "Mint"

type fullName struct {
	First string `db:"first"`
	Last  string `db:"last"`
}

type homeAddress struct {
	ID   int64  `db:"id,pk"`
	City string `db:"city"`
}

type person struct {
	ID      int64    `db:"id,pk"`
	Name    fullName `db:"name_,embedded"`
	Age     int      `db:"age"`
	Address *homeAddress
}

type album struct {
	ID        int64          `db:"id,pk"`
	Title     string         `db:"title"`
	Condition mediaCondition `db:"condition"`
	Tags      []string       `db:"tags"`
	Notes     *string        `db:"notes"`
	Rating    sql.NullString `db:"rating"`
}

func newReader(t *testing.T, converters ...Converter) *Reader {
	t.Helper()
	return NewReader(schema.NewRegistry(nil), NewConversions(converters...))
}

func TestReadSimpleEntity(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(7))
	doc.Put("title", "Kind of Blue")
	doc.Put("condition", "Mint")
	doc.Put("notes", "first pressing")

	got, err := ReadEntity[album](newReader(t), doc, doc)
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Kind of Blue", got.Title)
	assert.Equal(t, conditionMint, got.Condition)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "first pressing", *got.Notes)
}

func TestReadPointerTarget(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("title", "Blue Train")

	got, err := ReadEntity[*album](newReader(t), doc, doc)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Blue Train", got.Title)
}

func TestReadEmbedded(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("name_first", "Frodo")
	doc.Put("name_last", "Baggins")
	doc.Put("age", int64(50))

	got, err := ReadEntity[person](newReader(t), doc, doc)
	require.NoError(t, err)

	assert.Equal(t, fullName{First: "Frodo", Last: "Baggins"}, got.Name)
	assert.Equal(t, 50, got.Age)
}

func TestReadEmbeddedAbsentLeavesNilPointer(t *testing.T) {
	type optional struct {
		ID   int64     `db:"id,pk"`
		Name *fullName `db:"name_,embedded"`
	}

	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("name_first", nil)
	doc.Put("name_last", nil)

	got, err := ReadEntity[optional](newReader(t), doc, doc)
	require.NoError(t, err)
	assert.Nil(t, got.Name)

	doc.Put("name_first", "Sam")
	got, err = ReadEntity[optional](newReader(t), doc, doc)
	require.NoError(t, err)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Sam", got.Name.First)
}

func TestReadNestedEntity(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("age", int64(33))
	doc.Put("address_id", int64(5))
	doc.Put("address_city", "Hobbiton")

	got, err := ReadEntity[person](newReader(t), doc, doc)
	require.NoError(t, err)

	require.NotNil(t, got.Address)
	assert.Equal(t, int64(5), got.Address.ID)
	assert.Equal(t, "Hobbiton", got.Address.City)
}

func TestReadNestedEntityNullIDMeansAbsent(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("address_id", nil)
	doc.Put("address_city", "ghost town")

	got, err := ReadEntity[person](newReader(t), doc, doc)
	require.NoError(t, err)

	// A null nested identifier yields nil, never a partially populated object.
	assert.Nil(t, got.Address)
}

func TestReadPartialProjection(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("title", "Giant Steps")

	got, err := ReadEntity[album](newReader(t), doc, doc)
	require.NoError(t, err)

	assert.Equal(t, "Giant Steps", got.Title)
	assert.Zero(t, got.ID)
	assert.Empty(t, got.Condition)
}

type jsonText struct {
	Raw string
}

func TestReadCustomConverterBeatsDefault(t *testing.T) {
	type document struct {
		ID      int64  `db:"id,pk"`
		Payload string `db:"json_string"`
	}

	reader := newReader(t, ReadAs(func(j jsonText) (string, error) {
		return strings.Trim(j.Raw, `"`), nil
	}))

	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("json_string", jsonText{Raw: `"hello"`})

	got, err := ReadEntity[document](reader, doc, doc)
	require.NoError(t, err)

	// The registered converter wins over structural handling.
	assert.Equal(t, "hello", got.Payload)
}

func TestReadWholeRowConverter(t *testing.T) {
	type titleOnly struct {
		Title string
	}

	reader := newReader(t, ReadAs(func(doc *RowDocument) (titleOnly, error) {
		raw, err := doc.Get("title")
		if err != nil {
			return titleOnly{}, err
		}
		return titleOnly{Title: raw.(string)}, nil
	}))

	doc := NewRowDocument()
	doc.Put("title", "A Love Supreme")

	got, err := ReadEntity[titleOnly](reader, doc, doc)
	require.NoError(t, err)
	assert.Equal(t, "A Love Supreme", got.Title)
}

func TestReadRawRowTarget(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("anything", 1)

	got, err := ReadEntity[*RowDocument](newReader(t), doc, doc)
	require.NoError(t, err)
	assert.Same(t, doc, got)
}

func TestReadCollections(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("tags", []any{"jazz", "vinyl"})

	got, err := ReadEntity[album](newReader(t), doc, doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz", "vinyl"}, got.Tags)
}

func TestReadCollectionElementConversion(t *testing.T) {
	type counts struct {
		ID     int64   `db:"id,pk"`
		Values []int32 `db:"values"`
	}

	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("values", []int64{1, 2, 3})

	got, err := ReadEntity[counts](newReader(t), doc, doc)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, got.Values)
}

func TestReadNestedCollectionRefused(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("tags", []any{[]any{"nested"}})

	_, err := ReadEntity[album](newReader(t), doc, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNestedCollection)
}

func TestReadScannerTarget(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("rating", "excellent")

	got, err := ReadEntity[album](newReader(t), doc, doc)
	require.NoError(t, err)
	assert.True(t, got.Rating.Valid)
	assert.Equal(t, "excellent", got.Rating.String)
}

func TestReadFailureNamesPropertyAndColumn(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("condition", int64(42))

	_, err := ReadEntity[album](newReader(t), doc, doc)
	require.Error(t, err)

	var mapErr *MappingError
	require.True(t, errors.As(err, &mapErr))
	assert.Equal(t, "album", mapErr.Entity)
	assert.Equal(t, "Condition", mapErr.Property)
	assert.Equal(t, "condition", mapErr.Column)
	assert.ErrorIs(t, err, ErrCannotConvert)
}

func TestReadRejectsUnmappedTarget(t *testing.T) {
	doc := NewRowDocument()
	doc.Put("x", 1)

	_, err := newReader(t).Read(reflect.TypeOf(42), doc, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAnEntity)
}

func TestReadAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, title, condition FROM album").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "condition"}).
			AddRow(int64(1), "Blue Train", "Mint").
			AddRow(int64(2), "Giant Steps", "Mint"))

	rows, err := db.Query("SELECT id, title, condition FROM album")
	require.NoError(t, err)

	got, err := ReadAll[album](newReader(t), rows)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, album{ID: 1, Title: "Blue Train", Condition: conditionMint}, got[0])
	assert.Equal(t, "Giant Steps", got[1].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReadAllPropagatesRowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, title FROM album").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(1), "Blue Train").
			RowError(0, errors.New("connection reset")))

	rows, err := db.Query("SELECT id, title FROM album")
	require.NoError(t, err)

	_, err = ReadAll[album](newReader(t), rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
