package http

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/errutil"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

type actorKey struct{}

func contextWithActor(ctx context.Context, id types.UserID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// actorFrom returns the authenticated caller, or an empty ID if the request
// did not pass authMiddleware
func actorFrom(ctx context.Context) types.UserID {
	if id, ok := ctx.Value(actorKey{}).(types.UserID); ok {
		return id
	}
	return ""
}

// authMiddleware resolves the caller identity and rejects anonymous requests
func authMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authn == nil {
				errutil.HandleHTTP(r.Context(), w, goerr.New("authentication is not configured"), http.StatusUnauthorized)
				return
			}

			userID, err := authn.Authenticate(r)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
				return
			}

			ctx := contextWithActor(r.Context(), userID)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
