package storage

import (
	"context"
	"database/sql"
	"fmt"

	"doorstep/internal/storage/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const migrationsDialect = "postgres"

// RunMigrations applies every pending catalog migration.
func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	const operation = "storage.RunMigrations"

	logger.Info("Running database migrations...")

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(migrationsDialect); err != nil {
		return fmt.Errorf("%s: failed to set dialect: %w", operation, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", operation, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("%s: failed to read version: %w", operation, err)
	}

	logger.Info("Database migrations completed", zap.Int64("version", version))
	return nil
}
