// Package storage selects and opens the repository backend named in the
// configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
	"clubhub-backend/internal/repository/memory"
	"clubhub-backend/internal/repository/postgres"
)

const (
	TypePostgres = "postgres"
	TypeMemory   = "memory"
)

// Open returns the configured store. For postgres the connection is pinged
// and, when database.auto_migrate is set, the embedded schema is applied.
func Open(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Type {
	case TypeMemory:
		return openMemory(cfg.Storage.SeedFile)
	case TypePostgres, "":
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

func openMemory(seedFile string) (repository.Store, error) {
	logger.Warn("Using in-memory storage; data is lost on restart")
	store := memory.NewStore()
	if seedFile == "" {
		return store, nil
	}
	if err := store.LoadSeed(seedFile); err != nil {
		return nil, fmt.Errorf("failed to load seed file: %w", err)
	}
	logger.Info("Seed data loaded", "file", seedFile)
	return store, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	if cfg.Database.AutoMigrate {
		if err := store.ApplyMigrations(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("Database migrations applied")
	}
	return store, nil
}
