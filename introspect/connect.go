package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridoystarlord/modelforge/config"
	"github.com/ridoystarlord/modelforge/database"
)

// Open connects to the database described by cfg and returns a provider for it along
// with a function releasing the connection. The PostgreSQL pool is shared by every
// caller and stays open until database.ClosePool.
func Open(ctx context.Context, cfg *config.Config) (Provider, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		path := strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite driver needs a database path in DATABASE_URL")
		}
		db, err := database.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLite(db), func() { db.Close() }, nil

	case config.DriverPostgres, "":
		pool, err := database.GetPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to get connection pool: %w", err)
		}
		return NewPostgres(pool, cfg.DBSchema), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
