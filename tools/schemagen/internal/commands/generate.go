package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gaborage/go-mortar/tools/schemagen/internal/generator"
	"github.com/gaborage/go-mortar/tools/schemagen/internal/models"
)

// GenerateOptions holds options for the generate command
type GenerateOptions struct {
	InputFile  string
	OutputFile string
	Package    string
	Verbose    bool
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate static schema registrations from a dump file",
		Long: `Reads a JSON schema dump produced by schema.Dump and emits a Go source
file declaring RegisterStaticSchemas, which installs pre-built entity
descriptors so mapped types never touch struct-tag parsing at runtime.

The generated file must live in the package that declares the entity types,
since the emitted code references them unqualified.`,
		Example: `  # Generate registrations for the entities package
  go-mortar-schemagen generate -i schema.json -p entities -o entities/schema_gen.go`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGenerate(opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "schema.json", "Schema dump file (schema.Dump output)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "schema_gen.go", "Output file path")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "Package name for the generated file (required)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output")

	if err := cmd.MarkFlagRequired("package"); err != nil {
		panic(err)
	}

	return cmd
}

func runGenerate(opts *GenerateOptions) error {
	entities, err := loadDump(opts.InputFile)
	if err != nil {
		return err
	}

	if opts.Verbose {
		fmt.Printf("Loaded %d entities from %s\n", len(entities), opts.InputFile)
		for _, e := range entities {
			fmt.Printf("  %s -> %s (%d columns)\n", e.Type, e.Table, len(e.Columns))
		}
	}

	f, err := generator.File(opts.Package, entities)
	if err != nil {
		return fmt.Errorf("generate %s: %w", opts.OutputFile, err)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", opts.OutputFile, err)
	}

	if dir := filepath.Dir(opts.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(opts.OutputFile, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.OutputFile, err)
	}

	fmt.Printf("Wrote %s (%d entities)\n", opts.OutputFile, len(entities))
	return nil
}

func loadDump(path string) ([]models.Entity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema dump: %w", err)
	}

	var entities []models.Entity
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("parse schema dump %s: %w", path, err)
	}
	return entities, nil
}
