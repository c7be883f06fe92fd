package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
)

const onePendingIndex = "idx_approval_workflows_one_pending"

// mapPostgresError maps PostgreSQL errors to repository sentinel errors.
// Errors that are not PostgreSQL errors are returned unchanged.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == onePendingIndex {
			return goerr.Wrap(interfaces.ErrPendingExists, "risk already has a pending workflow",
				goerr.V("detail", pgErr.Detail))
		}
		return goerr.Wrap(err, "unique constraint violation", goerr.V("constraint", pgErr.ConstraintName))

	case pgerrcode.ForeignKeyViolation:
		return goerr.Wrap(ErrNotFound, "referenced record not found",
			goerr.V("constraint", pgErr.ConstraintName),
			goerr.V("detail", pgErr.Detail))

	case pgerrcode.CheckViolation:
		return goerr.Wrap(err, "check constraint violation", goerr.V("constraint", pgErr.ConstraintName))

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return goerr.Wrap(err, "transaction conflict (retryable)")

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return goerr.Wrap(err, "database connection error")

	case pgerrcode.QueryCanceled:
		return goerr.Wrap(err, "query canceled")

	default:
		return goerr.Wrap(err, "postgres error",
			goerr.V("code", pgErr.Code),
			goerr.V("detail", pgErr.Detail),
			goerr.V("hint", pgErr.Hint))
	}
}
