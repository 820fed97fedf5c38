package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/pkg/httpx"
)

// SessionTokens is the part of the token service the session endpoints use.
type SessionTokens interface {
	Revoke(ctx context.Context, accessToken string) (bool, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

// LogoutResponse reports whether a session was revoked.
type LogoutResponse struct {
	Data bool `json:"data"`
}

// LogoutHandler serves POST /api/auth/logout/.
type LogoutHandler struct {
	Tokens SessionTokens
}

// ServeHTTP godoc
//
//	@Summary		Destroy auth session
//	@Description	Revokes the bearer token and its paired token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	LogoutResponse	"data"
//	@Failure		401	{object}	APIError		"missing or invalid session"
//	@Security		BearerAuth
//	@Router			/api/auth/logout/ [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.TokenFromContext(r.Context())
	if !ok {
		ErrUnauthorized.WriteError(w)
		return
	}

	revoked, err := h.Tokens.Revoke(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, LogoutResponse{Data: revoked})
}

// RefreshHandler serves POST /api/auth/refresh/. The bearer token is the
// refresh token.
type RefreshHandler struct {
	Tokens SessionTokens
}

// ServeHTTP godoc
//
//	@Summary		Refresh tokens
//	@Description	Trades the bearer refresh token for a new pair. Each refresh token works once.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	domain.TokenPair	"access_token, refresh_token, expires_at"
//	@Failure		401	{object}	APIError			"refresh token invalid or already used"
//	@Security		BearerAuth
//	@Router			/api/auth/refresh/ [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.TokenFromContext(r.Context())
	if !ok {
		ErrUnauthorized.WriteError(w)
		return
	}

	// The gate already loaded the entry; access tokens have no partner access token.
	if rec, ok := httpx.SessionFromContext[domain.TokenRecord](r.Context()); ok && rec.AccessToken == "" {
		ErrUnauthorized.WriteError(w)
		return
	}

	pair, err := h.Tokens.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}
