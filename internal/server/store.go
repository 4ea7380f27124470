package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/users-api/internal/config"
	"github.com/sakif/users-api/internal/repository"
	"github.com/sakif/users-api/internal/repository/postgres"
	sqliteRepo "github.com/sakif/users-api/internal/repository/sqlite"
)

// OpenStore opens and pings the store selected by DB_DRIVER.
//
// IMPORT ALIAS: repository/sqlite is imported as sqliteRepo so it does not
// read like the modernc driver package.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.PostgresDSN(), postgres.Options{
			MaxConns:    int32(cfg.DBMaxConns),
			AutoMigrate: cfg.DBAutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres",
			slog.String("host", cfg.DBHost),
			slog.String("database", cfg.DBName),
		)
		return db, nil

	case config.DriverSQLite:
		if cfg.DBPath != ":memory:" {
			dir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(ctx, cfg.DBPath, sqliteRepo.Options{
			MaxOpenConns: cfg.DBMaxConns,
			AutoMigrate:  cfg.DBAutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite database", slog.String("path", cfg.DBPath))
		return db, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}
