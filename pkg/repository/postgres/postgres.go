package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = interfaces.ErrNotFound

// DB is the subset of *pgxpool.Pool used by the repositories. pgxmock pools
// satisfy it as well.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// querier is satisfied by both DB and pgx.Tx
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Postgres struct {
	db       DB
	risk     *riskRepository
	workflow *approvalWorkflowRepository
	member   *memberRepository
}

var _ interfaces.Repository = &Postgres{}

// New connects to PostgreSQL using the pool configuration
func New(ctx context.Context, cfg *PoolConfig) (*Postgres, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithDB(pool), nil
}

// NewWithDB builds the repository on an existing connection
func NewWithDB(db DB) *Postgres {
	return &Postgres{
		db:       db,
		risk:     &riskRepository{db: db},
		workflow: &approvalWorkflowRepository{db: db},
		member:   &memberRepository{db: db},
	}
}

func (p *Postgres) Risk() interfaces.RiskRepository {
	return p.risk
}

func (p *Postgres) ApprovalWorkflow() interfaces.ApprovalWorkflowRepository {
	return p.workflow
}

func (p *Postgres) Member() interfaces.MemberRepository {
	return p.member
}

// Migrate applies pending schema migrations
func (p *Postgres) Migrate(ctx context.Context) error {
	return runMigrations(ctx, p.db)
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
