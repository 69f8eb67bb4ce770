package oracle

import (
	go_ora "github.com/sijms/go-ora/v2"

	"github.com/gaborage/go-mortar/convert"
)

// Converters unwraps the go-ora LOB carrier types so CLOB columns read as
// strings and BLOB columns as byte slices. Null LOBs read as zero values.
// Register these alongside dialect.OracleDialect.Converters().
func Converters() []convert.Converter {
	return []convert.Converter{
		convert.ReadAs(func(c go_ora.Clob) (string, error) {
			return c.String, nil
		}),
		convert.ReadAs(func(b go_ora.Blob) ([]byte, error) {
			return b.Data, nil
		}),
	}
}
