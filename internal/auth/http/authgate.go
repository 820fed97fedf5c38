package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/pkg/cryptox"
	"github.com/aussiebroadwan/beatme/pkg/httpx"
	"github.com/aussiebroadwan/beatme/pkg/slogx"
)

// Authenticator resolves a bearer token to its store record.
// *service.TokenService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (domain.TokenRecord, error)
}

// AuthGate authenticates bearer tokens on every request. Requests without a
// bearer token pass through anonymously; requests with a bad one are
// rejected here, before any route sees them. Routes that need a session add
// httpx.RequireUser.
func AuthGate(auth Authenticator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := httpx.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			rec, err := auth.Authenticate(ctx, raw)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					slogx.FromContext(ctx).Debug("bearer token rejected",
						slog.String("token_fp", cryptox.ShortFingerprint(raw)),
						slog.Any("error", err),
					)
					httpx.WriteBearerError(w, "invalid or revoked token")
					return
				}
				slogx.FromContext(ctx).Error("token lookup failed", slog.Any("error", err))
				ErrInternal.WriteError(w)
				return
			}

			ctx = httpx.WithIdentity(ctx, rec.UserID, raw, rec)
			ctx = slogx.With(ctx, slog.String("user_id", rec.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
