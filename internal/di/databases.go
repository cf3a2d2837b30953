package di

import (
	"context"
	"fmt"

	"github.com/aristath/portfolio-advisor/internal/config"
	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/aristath/portfolio-advisor/internal/modules/advisor"
	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the configured database, applies the schema and
// builds the stores on top of it.
func InitializeDatabases(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{Config: cfg}

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		container.Pool = pool
		container.Store = universe.NewPostgresStore(pool, log)
		container.UsageStore = advisor.NewPostgresUsageRepository(pool, log)
		log.Info().Str("driver", cfg.DatabaseDriver).Msg("Database initialized")

	default:
		db, err := database.New(database.Config{
			Path: cfg.SQLitePath(),
			Name: "advisor",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize advisor database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		container.DB = db
		container.Store = universe.NewSQLiteStore(db.Conn(), log)
		container.UsageStore = advisor.NewUsageRepository(db.Conn(), log)
		log.Info().Str("driver", config.DriverSQLite).Str("path", db.Path()).Msg("Database initialized")
	}

	return container, nil
}

// Close releases the database handles
func (c *Container) Close() error {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// HealthCheck verifies the database is reachable
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.Pool != nil {
		return c.Pool.Ping(ctx)
	}
	if c.DB != nil {
		return c.DB.HealthCheck(ctx)
	}
	return fmt.Errorf("no database configured")
}

// DriverName reports the active database driver
func (c *Container) DriverName() string {
	if c.Pool != nil {
		return config.DriverPostgres
	}
	return config.DriverSQLite
}
