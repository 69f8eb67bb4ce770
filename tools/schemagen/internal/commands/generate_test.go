package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `[
  {
    "type": "User",
    "table": "users",
    "columns": [
      {"field": "ID", "column": "id", "id": true},
      {"field": "Name", "column": "name"}
    ]
  }
]`

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunGenerateWritesRegistrationFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen", "schema_gen.go")
	opts := &GenerateOptions{
		InputFile:  writeDump(t, sampleDump),
		OutputFile: out,
		Package:    "entities",
	}

	require.NoError(t, runGenerate(opts))

	code, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(code), "package entities")
	assert.Contains(t, string(code), "func RegisterStaticSchemas")
	assert.Contains(t, string(code), `"users"`)
}

func TestRunGenerateMissingInput(t *testing.T) {
	opts := &GenerateOptions{
		InputFile:  filepath.Join(t.TempDir(), "nope.json"),
		OutputFile: filepath.Join(t.TempDir(), "schema_gen.go"),
		Package:    "entities",
	}

	err := runGenerate(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema dump")
}

func TestRunGenerateMalformedDump(t *testing.T) {
	opts := &GenerateOptions{
		InputFile:  writeDump(t, "{not json"),
		OutputFile: filepath.Join(t.TempDir(), "schema_gen.go"),
		Package:    "entities",
	}

	err := runGenerate(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse schema dump")
}

func TestRunGenerateEmptyDump(t *testing.T) {
	opts := &GenerateOptions{
		InputFile:  writeDump(t, "[]"),
		OutputFile: filepath.Join(t.TempDir(), "schema_gen.go"),
		Package:    "entities",
	}

	err := runGenerate(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entities")
}

func TestNewGenerateCommandFlags(t *testing.T) {
	cmd := NewGenerateCommand()

	for _, name := range []string{"input", "output", "package", "verbose"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}
