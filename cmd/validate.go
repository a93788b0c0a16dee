package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ridoystarlord/modelforge/validator"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("schema validation failed")

func newValidateCmd(a *app) *cobra.Command {
	var format string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the schema for problems before generating models",
		Long: `Validate the database schema (or a YAML snapshot) for things that would produce
broken or surprising models.

This command reports:
- Names that are not valid identifiers in generated code (keywords, bad characters)
- Entity tables without a primary key
- Relations whose name collides with a column
- Ambiguous many-to-many links between the same pair of tables
- Tables with two foreign keys that are not treated as association tables

Examples:
  modelforge validate                              # Validate the configured database
  modelforge validate --schema-file schema.yaml    # Validate a YAML snapshot
  modelforge validate --format json                # Output validation results as JSON
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *validator.ValidationResult

			s, err := a.loadSchema(cmd.Context())
			if err != nil {
				if result, err = validator.FromError(err); err != nil {
					return err
				}
			} else {
				result = validator.ValidateSchema(s, nil)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				err = outputJSON(out, result)
			case "text":
				err = outputText(out, result)
			default:
				return fmt.Errorf("unsupported format %q (text, json)", format)
			}
			if err != nil {
				return err
			}

			if !result.Valid {
				return errValidationFailed
			}
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return validateCmd
}

func outputJSON(w io.Writer, result *validator.ValidationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(w io.Writer, result *validator.ValidationResult) error {
	if result.Valid {
		color.New(color.FgGreen).Fprintln(w, "✅ Schema validation passed!")
	} else {
		color.New(color.FgRed).Fprintln(w, "❌ Schema validation failed!")
	}

	printFindings(w, "🔴 Errors", result.Errors)
	printFindings(w, "🟡 Warnings", result.Warnings)
	printFindings(w, "🔵 Info", result.Info)

	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Errors: %d\n", len(result.Errors))
	fmt.Fprintf(w, "  • Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(w, "  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Fprintf(w, "\n🎉 Your schema is ready for model generation!\n")
	} else {
		fmt.Fprintf(w, "\n💡 Fix the errors above before generating models.\n")
	}
	return nil
}

func printFindings(w io.Writer, title string, findings []validator.ValidationError) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(findings))
	for i, f := range findings {
		fmt.Fprintf(w, "  %d. ", i+1)
		if f.Table != "" {
			fmt.Fprintf(w, "[%s]", f.Table)
		}
		if f.Column != "" {
			fmt.Fprintf(w, ".%s", f.Column)
		}
		if f.Relation != "" && f.Relation != f.Column {
			fmt.Fprintf(w, " (relation: %s)", f.Relation)
		}
		fmt.Fprintf(w, ": %s\n", f.Message)
	}
}
