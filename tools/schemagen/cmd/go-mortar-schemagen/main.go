package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaborage/go-mortar/tools/schemagen/internal/commands"
)

var version = "dev" // Will be set during build

func main() {
	rootCmd := &cobra.Command{
		Use:   "go-mortar-schemagen",
		Short: "Generate static schema registrations for go-mortar entities",
		Long: `Static schema registration generator for go-mortar.

This tool reads a JSON dump of entity descriptors (schema.Dump output) and
emits a Go source file that registers the same descriptors without any
struct-tag parsing at runtime.`,
		Version: version,
	}

	rootCmd.AddCommand(
		commands.NewGenerateCommand(),
		commands.NewVersionCommand(version),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
