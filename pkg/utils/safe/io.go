package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

// Close closes an io.Closer and logs any error. It handles nil closers.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// CloseFunc wraps a plain close function, such as a pool's Close, as an io.Closer
type CloseFunc func()

func (f CloseFunc) Close() error {
	f()
	return nil
}
