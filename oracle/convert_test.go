package oracle

import (
	"testing"

	go_ora "github.com/sijms/go-ora/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-mortar/convert"
	"github.com/gaborage/go-mortar/schema"
)

type report struct {
	ID      int64  `db:"id,pk"`
	Body    string `db:"body"`
	Payload []byte `db:"payload"`
}

func newLOBReader(t *testing.T) *convert.Reader {
	t.Helper()
	return convert.NewReader(schema.NewRegistry(nil), convert.NewConversions(Converters()...))
}

func TestConvertersUnwrapLOBs(t *testing.T) {
	doc := convert.NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("body", go_ora.Clob{String: "large text", Valid: true})
	doc.Put("payload", go_ora.Blob{Data: []byte{0x1, 0x2}, Valid: true})

	got, err := convert.ReadEntity[report](newLOBReader(t), doc, doc)
	require.NoError(t, err)

	assert.Equal(t, "large text", got.Body)
	assert.Equal(t, []byte{0x1, 0x2}, got.Payload)
}

func TestConvertersNullLOBsReadAsZero(t *testing.T) {
	doc := convert.NewRowDocument()
	doc.Put("id", int64(1))
	doc.Put("body", go_ora.Clob{})
	doc.Put("payload", go_ora.Blob{})

	got, err := convert.ReadEntity[report](newLOBReader(t), doc, doc)
	require.NoError(t, err)

	assert.Empty(t, got.Body)
	assert.Empty(t, got.Payload)
}
