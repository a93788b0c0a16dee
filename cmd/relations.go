package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ridoystarlord/modelforge/relations"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/spf13/cobra"
)

type tableRelations struct {
	Name      string            `json:"name"`
	Kind      string            `json:"kind"`
	Relations []schema.Relation `json:"relations"`
}

type relationsReport struct {
	Tables      []tableRelations       `json:"tables"`
	Diagnostics []relations.Diagnostic `json:"diagnostics"`
}

func buildRelationsReport(res *relations.Resolution) relationsReport {
	report := relationsReport{
		Tables:      []tableRelations{},
		Diagnostics: res.Diagnostics(),
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []relations.Diagnostic{}
	}
	for _, name := range res.Tables() {
		rels := res.For(name)
		if rels == nil {
			rels = []schema.Relation{}
		}
		report.Tables = append(report.Tables, tableRelations{
			Name:      name,
			Kind:      res.Kind(name).String(),
			Relations: rels,
		})
	}
	return report
}

func newRelationsCmd(a *app) *cobra.Command {
	var asJSON bool

	relationsCmd := &cobra.Command{
		Use:   "relations",
		Short: "Show how tables are classified and which relations are inferred",
		Long: `Show the classification of every table (entity or association) and the
relations that would be declared on each generated class.

Examples:
  modelforge relations
  modelforge relations --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			res := relations.Resolve(s)

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(buildRelationsReport(res))
			}
			showRelations(cmd.OutOrStdout(), res)
			return nil
		},
	}

	relationsCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return relationsCmd
}

func showRelations(w io.Writer, res *relations.Resolution) {
	green := color.New(color.FgGreen, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	if len(res.Tables()) == 0 {
		fmt.Fprintln(w, "ℹ️  No tables found.")
		return
	}

	for _, name := range res.Tables() {
		if res.Kind(name) == relations.AssociationTable {
			blue.Fprintf(w, "🔗 %s (association)\n", name)
			continue
		}
		green.Fprintf(w, "📦 %s\n", name)
		for _, rel := range res.For(name) {
			line := fmt.Sprintf("   %s → %s [%s", rel.Name, rel.TargetClass, rel.Type)
			if rel.Secondary != "" {
				line += " via " + rel.Secondary
			}
			if rel.BackPopulates != "" {
				line += ", back-populates " + rel.BackPopulates
			}
			cyan.Fprintln(w, line+"]")
		}
	}

	for _, d := range res.Diagnostics() {
		yellow.Fprintf(w, "⚠️  [%s] %s\n", d.Table, d.Message)
	}

	fmt.Fprintf(w, "\n📊 %d tables, %d relations\n", len(res.Tables()), res.Count())
}
