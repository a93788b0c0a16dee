package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/ridoystarlord/modelforge/generator"
	"github.com/ridoystarlord/modelforge/relations"
	"github.com/spf13/cobra"
)

func newDocsCmd(a *app) *cobra.Command {
	var format, output string

	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate ERD diagrams from the schema",
		Long: `Generate entity-relationship diagrams from the introspected schema, using the
same relations the model generator infers.

Supported formats:
  - mermaid: Mermaid ERD diagram in a Markdown file
  - plantuml: PlantUML ERD diagram
  - all: both, written into the --output directory

Examples:
  modelforge docs --format mermaid --output erd.md
  modelforge docs --format plantuml --output erd.puml
  modelforge docs --format all --output docs/
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			if s.Len() == 0 {
				return fmt.Errorf("no tables found in schema")
			}
			res := relations.Resolve(s)

			green := color.New(color.FgGreen)
			write := func(path, content, label string) error {
				if err := os.WriteFile(path, []byte(content), 0644); err != nil {
					return fmt.Errorf("writing %s file: %w", label, err)
				}
				green.Fprintf(cmd.OutOrStdout(), "✅ %s ERD saved to: %s\n", label, path)
				return nil
			}

			switch format {
			case "mermaid":
				return write(orDefault(output, "erd.md"), generator.RenderMermaid(s, res), "Mermaid")
			case "plantuml":
				return write(orDefault(output, "erd.puml"), generator.RenderPlantUML(s, res), "PlantUML")
			case "all":
				dir := orDefault(output, "docs")
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
				if err := write(filepath.Join(dir, "erd.md"), generator.RenderMermaid(s, res), "Mermaid"); err != nil {
					return err
				}
				return write(filepath.Join(dir, "erd.puml"), generator.RenderPlantUML(s, res), "PlantUML")
			default:
				return fmt.Errorf("unsupported format %q (mermaid, plantuml, all)", format)
			}
		},
	}

	docsCmd.Flags().StringVarP(&format, "format", "f", "mermaid", "Documentation format (mermaid, plantuml, all)")
	docsCmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or directory for --format all")
	return docsCmd
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
