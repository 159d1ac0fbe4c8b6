package db

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate applies all pending schema migrations and returns the resulting
// schema version.
func Migrate(ctx context.Context, databaseURL string) (int64, error) {
	sqlDB, err := openSQL(databaseURL)
	if err != nil {
		return 0, err
	}
	defer sqlDB.Close() //nolint:errcheck

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return 0, eris.Wrap(err, "db: migrate up")
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, eris.Wrap(err, "db: read schema version")
	}

	zap.L().Info("db: migrations applied", zap.Int64("version", version))
	return version, nil
}

// SchemaVersion reports the currently applied migration version.
func SchemaVersion(ctx context.Context, databaseURL string) (int64, error) {
	sqlDB, err := openSQL(databaseURL)
	if err != nil {
		return 0, err
	}
	defer sqlDB.Close() //nolint:errcheck

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, eris.Wrap(err, "db: read schema version")
	}
	return version, nil
}

func openSQL(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, eris.New("db: database_url is required (DIRECTORY_STORE_DATABASE_URL)")
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, eris.Wrap(err, "db: goose dialect")
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "db: open")
	}
	return sqlDB, nil
}
