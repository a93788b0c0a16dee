package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/ridoystarlord/modelforge/generator"
	"github.com/ridoystarlord/modelforge/relations"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate ORM models from the database schema",
		Long: `Introspect the database (or a YAML snapshot) and emit ORM model source code.

Association tables (exactly two foreign keys covering the whole primary key) become
many-to-many links between the two tables they join; every other table becomes a class.

Supported formats: ` + strings.Join(generator.Formats(), ", ") + `

Examples:
  modelforge generate                          # Print SQLAlchemy models to stdout
  modelforge generate -o models.py             # Write them to a file
  modelforge generate -f gostruct -p entities  # Go structs in package entities
  modelforge generate --schema-file schema.yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema(cmd.Context())
			if err != nil {
				return err
			}

			content, res, err := generator.Generate(s, a.cfg.Format, generator.Options{Package: a.cfg.Package})
			if err != nil {
				return fmt.Errorf("generating models: %w", err)
			}

			reportDiagnostics(cmd.ErrOrStderr(), res)
			return outputModels(cmd.OutOrStdout(), cmd.ErrOrStderr(), content, a.cfg.Output)
		},
	}

	flags := generateCmd.Flags()
	flags.StringP("format", "f", generator.DefaultFormat, "Output format ("+strings.Join(generator.Formats(), ", ")+")")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.StringP("package", "p", "models", "Package name for the gostruct format")
	a.bindFlag("format", flags.Lookup("format"))
	a.bindFlag("output", flags.Lookup("output"))
	a.bindFlag("package", flags.Lookup("package"))

	return generateCmd
}

// outputModels writes content to outputFile, or to stdout when outputFile is empty.
// Confirmations always go to stderr so stdout carries nothing but the models.
func outputModels(stdout, stderr io.Writer, content, outputFile string) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputFile, err)
		}
		color.New(color.FgGreen).Fprintf(stderr, "✅ Models have been written to %s\n", outputFile)
		return nil
	}

	if _, err := io.WriteString(stdout, content); err != nil {
		return fmt.Errorf("writing models: %w", err)
	}
	color.New(color.FgGreen).Fprintln(stderr, "✅ Models have been printed to stdout")
	return nil
}

func reportDiagnostics(w io.Writer, res *relations.Resolution) {
	if res == nil {
		return
	}
	yellow := color.New(color.FgYellow)
	for _, d := range res.Diagnostics() {
		if d.Severity != "warning" {
			continue
		}
		yellow.Fprintf(w, "⚠️  [%s] %s\n", d.Table, d.Message)
	}
}
