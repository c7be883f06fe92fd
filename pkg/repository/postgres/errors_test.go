package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
)

func TestMapPostgresError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		gt.NoError(t, mapPostgresError(nil))
	})

	t.Run("non postgres error passes through", func(t *testing.T) {
		orig := errors.New("boom")
		gt.Value(t, mapPostgresError(orig)).Equal(orig)
	})

	t.Run("pending index violation", func(t *testing.T) {
		err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: onePendingIndex})
		gt.Error(t, err).Is(interfaces.ErrPendingExists)
	})

	t.Run("other unique violation", func(t *testing.T) {
		err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "risks_pkey"})
		gt.B(t, errors.Is(err, interfaces.ErrPendingExists)).False()
	})

	t.Run("foreign key violation", func(t *testing.T) {
		err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("serialization failure keeps original", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		var target *pgconn.PgError
		gt.B(t, errors.As(mapPostgresError(pgErr), &target)).True()
	})
}
