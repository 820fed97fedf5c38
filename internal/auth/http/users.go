package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/pkg/httpx"
)

// AccountResponse is a linked provider account without its credentials.
type AccountResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"_id"`
	Provider   string    `json:"provider"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserResponse struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	AuthAccounts []AccountResponse `json:"auth_accounts"`
}

type ProviderTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	out := UserResponse{
		ID:           u.ID,
		CreatedAt:    u.CreatedAt,
		AuthAccounts: make([]AccountResponse, 0, len(u.Accounts)),
	}
	for _, a := range u.Accounts {
		out.AuthAccounts = append(out.AuthAccounts, AccountResponse{
			ID:         a.ID,
			ExternalID: a.ExternalID,
			Provider:   string(a.Provider),
			Name:       a.Name,
			Image:      a.Image,
			URL:        a.URL,
			CreatedAt:  a.CreatedAt,
		})
	}
	return out
}

// UsersHandler serves /api/users/me/.
type UsersHandler struct {
	Accounts *service.AccountService
}

// HandleMe godoc
//
//	@Summary		Get current user info
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	UserResponse	"id, auth_accounts"
//	@Failure		401	{object}	APIError		"missing or invalid session"
//	@Security		BearerAuth
//	@Router			/api/users/me/ [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := httpx.UserIDFromContext(r.Context())

	u, err := h.Accounts.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleProviderToken godoc
//
//	@Summary		Get a provider access token
//	@Description	Returns a usable access token for the provider, refreshing it first when it has expired.
//	@Tags			Users
//	@Produce		json
//	@Param			provider	path		string					true	"Provider"	Enums(facebook, google, spotify, vk)
//	@Success		200			{object}	ProviderTokenResponse	"access_token, expires_at"
//	@Failure		400			{object}	APIError				"unsupported provider"
//	@Failure		401			{object}	APIError				"missing session or provider token can't be refreshed"
//	@Failure		404			{object}	APIError				"no account at this provider"
//	@Security		BearerAuth
//	@Router			/api/users/me/providers/{provider}/token/ [get].
func (h *UsersHandler) HandleProviderToken(w http.ResponseWriter, r *http.Request) {
	p, ok := providerFromPath(r)
	if !ok {
		ErrUnsupportedProvider.WriteError(w)
		return
	}
	userID, _ := httpx.UserIDFromContext(r.Context())

	tok, err := h.Accounts.ProviderAccessToken(r.Context(), userID, p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ProviderTokenResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
	})
}
