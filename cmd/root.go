package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/ridoystarlord/modelforge/config"
	"github.com/ridoystarlord/modelforge/database"
	"github.com/ridoystarlord/modelforge/introspect"
	"github.com/ridoystarlord/modelforge/loader"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/ridoystarlord/modelforge/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "modelforge",
		Short: "Generate ORM models from an existing database schema",
		Long: `modelforge reads tables, primary keys and foreign keys from a database and
emits ORM model classes, inferring many-to-one and many-to-many relations.

Examples:

  modelforge generate
  modelforge generate -o models.py
  modelforge generate --schema-file schema.yaml --format gostruct
  modelforge relations
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			utils.LoadEnv()
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default: ./modelforge.yaml when present)")
	flags.String("database-url", "", "Database connection string (default: $DATABASE_URL)")
	flags.String("driver", config.DriverPostgres, "Database driver: postgres or sqlite")
	flags.String("db-schema", "public", "PostgreSQL schema to introspect")
	flags.String("schema-file", "", "Read the schema from a YAML snapshot instead of a database")
	flags.Duration("timeout", 10*time.Second, "Timeout for database introspection")
	a.bindFlag("database_url", flags.Lookup("database-url"))
	a.bindFlag("driver", flags.Lookup("driver"))
	a.bindFlag("db_schema", flags.Lookup("db-schema"))
	a.bindFlag("schema_file", flags.Lookup("schema-file"))
	a.bindFlag("timeout", flags.Lookup("timeout"))

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newRelationsCmd(a),
		newValidateCmd(a),
		newDocsCmd(a),
		newServeCmd(a),
		newHealthCmd(a),
		newInitCmd(),
	)

	return rootCmd
}

func (a *app) bindFlag(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

// loadSchema builds the schema snapshot from the YAML file when one is configured,
// otherwise from the configured database.
func (a *app) loadSchema(ctx context.Context) (*schema.Schema, error) {
	if a.cfg.SchemaFile != "" {
		s, err := loader.LoadSchemaFromYAML(a.cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", a.cfg.SchemaFile, err)
		}
		return s, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	provider, closeDB, err := introspect.Open(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	s, err := introspect.Snapshot(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("introspecting database: %w", err)
	}
	return s, nil
}

// Execute runs the CLI
func Execute() {
	err := newRootCmd().Execute()
	database.ClosePool()
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
