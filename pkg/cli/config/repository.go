package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/firestore"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/memory"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/postgres"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string

	postgresURL     string
	maxConns        int64
	minConns        int64
	maxConnLifetime time.Duration
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore or postgres)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("GRC_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("GRC_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("GRC_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "postgres-url",
			Usage:       "PostgreSQL connection string (required when using postgres backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("GRC_POSTGRES_URL"),
			Destination: &r.postgresURL,
		},
		&cli.Int64Flag{
			Name:        "postgres-max-conns",
			Usage:       "Maximum PostgreSQL pool connections",
			Category:    "Repository",
			Value:       20,
			Sources:     cli.EnvVars("GRC_POSTGRES_MAX_CONNS"),
			Destination: &r.maxConns,
		},
		&cli.Int64Flag{
			Name:        "postgres-min-conns",
			Usage:       "Minimum idle PostgreSQL pool connections",
			Category:    "Repository",
			Value:       2,
			Sources:     cli.EnvVars("GRC_POSTGRES_MIN_CONNS"),
			Destination: &r.minConns,
		},
		&cli.DurationFlag{
			Name:        "postgres-max-conn-lifetime",
			Usage:       "Maximum lifetime of a PostgreSQL connection",
			Category:    "Repository",
			Value:       time.Hour,
			Sources:     cli.EnvVars("GRC_POSTGRES_MAX_CONN_LIFETIME"),
			Destination: &r.maxConnLifetime,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
		slog.Int("postgres_url.len", len(r.postgresURL)),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

func (r *Repository) poolConfig() *postgres.PoolConfig {
	return &postgres.PoolConfig{
		ConnString:      r.postgresURL,
		MaxConns:        int32(r.maxConns), // #nosec G115 - bounded by operator input
		MinConns:        int32(r.minConns), // #nosec G115
		MaxConnLifetime: r.maxConnLifetime,
	}
}

// OpenPostgres connects to PostgreSQL without going through the backend switch.
// Used by the migrate command.
func (r *Repository) OpenPostgres(ctx context.Context) (*postgres.Postgres, error) {
	if r.postgresURL == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "postgres-url is required when using postgres backend")
	}
	repo, err := postgres.New(ctx, r.poolConfig())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize postgres repository")
	}
	return repo, nil
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres:
		repo, err := r.OpenPostgres(ctx)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Using PostgreSQL repository", "max_conns", r.maxConns)
		return repo, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
