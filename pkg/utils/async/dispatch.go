package async

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

var inflight sync.WaitGroup

// Dispatch runs handler in a new goroutine detached from ctx cancellation.
// The logger carried by ctx is preserved. Errors and panics are logged,
// never propagated.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)
	bgCtx = logging.With(bgCtx, logging.From(ctx))

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			var ge *goerr.Error
			if errors.As(err, &ge) {
				logging.From(bgCtx).Error("async handler failed", "error", err.Error(), "values", ge.Values())
				return
			}
			logging.From(bgCtx).Error("async handler failed", "error", err)
		}
	}()
}

// Drain blocks until every dispatched handler has returned or ctx is done.
// It returns false when ctx expired first.
func Drain(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
