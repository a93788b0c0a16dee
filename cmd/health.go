package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/ridoystarlord/modelforge/introspect"
	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check database connectivity",
		Long: `Check that the configured database is reachable and its catalog can be read.

Examples:
  modelforge health                                   # Check the default connection
  modelforge health --timeout 3s                      # Set a custom timeout
  modelforge health --driver sqlite --database-url app.db
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			provider, closeDB, err := introspect.Open(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("database health check failed: %w", err)
			}
			defer closeDB()

			tables, err := provider.ListTables(ctx)
			if err != nil {
				return fmt.Errorf("database health check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintln(out, "✅ Database is healthy and accessible")
			if len(tables) == 0 {
				fmt.Fprintf(out, "⚠️  No tables found in schema %q\n", a.cfg.DBSchema)
				return nil
			}
			fmt.Fprintf(out, "📊 Found %d tables\n", len(tables))
			return nil
		},
	}
}
