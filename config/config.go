// Package config loads modelforge settings from modelforge.yaml, MODELFORGE_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds every setting the commands read.
type Config struct {
	DatabaseURL string        `mapstructure:"database_url"`
	Driver      string        `mapstructure:"driver"`
	DBSchema    string        `mapstructure:"db_schema"`
	SchemaFile  string        `mapstructure:"schema_file"`
	Format      string        `mapstructure:"format"`
	Package     string        `mapstructure:"package"`
	Output      string        `mapstructure:"output"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Serve       ServeConfig   `mapstructure:"serve"`
}

type ServeConfig struct {
	Port string `mapstructure:"port"`
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("driver", DriverPostgres)
	v.SetDefault("db_schema", "public")
	v.SetDefault("format", "sqlalchemy")
	v.SetDefault("package", "models")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("serve.port", "8080")

	v.SetEnvPrefix("MODELFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// DATABASE_URL is what the rest of the toolchain (and .env files) already use
	_ = v.BindEnv("database_url", "MODELFORGE_DATABASE_URL", "DATABASE_URL")
}

// Load reads configFile (or ./modelforge.yaml when empty and present) into v and
// decodes the merged settings.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("modelforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later with a less useful error.
func (c *Config) Validate() error {
	c.Driver = strings.ToLower(c.Driver)
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %q (expected %s or %s)", c.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
