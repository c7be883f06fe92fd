package postgres

import (
	"context"
	"embed"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	content string
}

// loadMigrations reads the embedded migration files sorted by version.
// File names follow "<version>_<description>.sql".
func loadMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read migrations directory")
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			logging.Default().Warn("Skipping migration file with invalid name", "file", entry.Name())
			continue
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			logging.Default().Warn("Skipping migration file with invalid version", "file", entry.Name(), "error", err)
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read migration file", goerr.V("file", entry.Name()))
		}

		migrations = append(migrations, migration{
			version: version,
			name:    entry.Name(),
			content: string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// runMigrations executes pending migrations in order, each in its own
// transaction. Applied versions are tracked in schema_migrations.
func runMigrations(ctx context.Context, db DB) error {
	logger := logging.From(ctx)

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if _, err := db.Exec(ctx, createMigrationsTable); err != nil {
		return goerr.Wrap(mapPostgresError(err), "failed to create schema_migrations table")
	}

	logger.Info("Running database migrations", "count", len(migrations))
	for _, m := range migrations {
		if err := executeMigration(ctx, db, m); err != nil {
			return goerr.Wrap(err, "migration failed", goerr.V("name", m.name))
		}
	}

	logger.Info("All migrations completed")
	return nil
}

func executeMigration(ctx context.Context, db DB, m migration) error {
	logger := logging.From(ctx)

	var applied bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version,
	).Scan(&applied); err != nil {
		return goerr.Wrap(mapPostgresError(err), "failed to check migration status")
	}

	if applied {
		logger.Debug("Migration already applied", "version", m.version, "name", m.name)
		return nil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}

	logger.Info("Applying migration", "version", m.version, "name", m.name)
	if _, err := tx.Exec(ctx, m.content); err != nil {
		rollback(ctx, tx)
		return goerr.Wrap(mapPostgresError(err), "failed to execute migration SQL")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name,
	); err != nil {
		rollback(ctx, tx)
		return goerr.Wrap(mapPostgresError(err), "failed to record migration")
	}

	if err := tx.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit migration")
	}

	return nil
}
