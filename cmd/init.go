package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const exampleSchema = `# Offline schema snapshot. Use with: modelforge generate --schema-file schema.yaml
tables:
  - name: users
    columns:
      - name: id
        type: integer
        primary: true
      - name: name
        type: varchar(255)
        not_null: true

  - name: posts
    columns:
      - name: id
        type: integer
        primary: true
      - name: title
        type: text
      - name: published_at
        type: timestamp
      - name: user_id
        type: integer
        foreign_key:
          references_table: users
          references_column: id

  - name: tags
    columns:
      - name: id
        type: integer
        primary: true
      - name: name
        type: text

  # exactly two foreign keys covering the primary key: a many-to-many link
  - name: post_tags
    columns:
      - name: post_id
        type: integer
        primary: true
        foreign_key:
          references_table: posts
          references_column: id
      - name: tag_id
        type: integer
        primary: true
        foreign_key:
          references_table: tags
          references_column: id
`

// starterConfig is the subset of config.Config that init writes out.
type starterConfig struct {
	Driver   string            `yaml:"driver"`
	DBSchema string            `yaml:"db_schema"`
	Format   string            `yaml:"format"`
	Package  string            `yaml:"package"`
	Output   string            `yaml:"output"`
	Timeout  string            `yaml:"timeout"`
	Serve    map[string]string `yaml:"serve"`
}

func newInitCmd() *cobra.Command {
	var withSchema bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter modelforge.yaml",
		Long: `Create a modelforge.yaml config file in the current directory.
The database URL is read from DATABASE_URL (or a .env file) and is not written.

Examples:
  modelforge init                 # modelforge.yaml only
  modelforge init --with-schema   # also an example schema.yaml snapshot`,
		// init runs before any config exists
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if _, err := os.Stat("modelforge.yaml"); err == nil {
				return fmt.Errorf("modelforge.yaml already exists")
			}

			content, err := yaml.Marshal(starterConfig{
				Driver:   "postgres",
				DBSchema: "public",
				Format:   "sqlalchemy",
				Package:  "models",
				Output:   "models.py",
				Timeout:  "10s",
				Serve:    map[string]string{"port": "8080"},
			})
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			if err := os.WriteFile("modelforge.yaml", content, 0644); err != nil {
				return fmt.Errorf("creating modelforge.yaml: %w", err)
			}
			fmt.Fprintln(out, "✅ Created modelforge.yaml")

			if withSchema {
				if _, err := os.Stat("schema.yaml"); err == nil {
					return fmt.Errorf("schema.yaml already exists")
				}
				if err := os.WriteFile("schema.yaml", []byte(exampleSchema), 0644); err != nil {
					return fmt.Errorf("creating schema.yaml: %w", err)
				}
				fmt.Fprintln(out, "✅ Created schema.yaml example file.")
				fmt.Fprintln(out, "🚀 Run 'modelforge generate --schema-file schema.yaml' to try it")
				return nil
			}

			fmt.Fprintln(out, "🚀 Set DATABASE_URL and run 'modelforge generate'")
			return nil
		},
	}

	initCmd.Flags().BoolVar(&withSchema, "with-schema", false, "Also write an example schema.yaml")
	return initCmd
}
