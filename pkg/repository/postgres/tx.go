package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

// runInTx executes fn inside a transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func runInTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return mapPostgresError(err)
	}

	if err := fn(tx); err != nil {
		rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapPostgresError(err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil {
		logging.From(ctx).Warn("Failed to rollback transaction", "error", err)
	}
}
