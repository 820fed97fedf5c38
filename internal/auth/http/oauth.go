package http

import (
	"net/http"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/pkg/httpx"
)

// LinkResponse carries the provider consent URL.
type LinkResponse struct {
	Link string `json:"link"`
}

// OAuthHandler serves /api/auth/{provider}/.
type OAuthHandler struct {
	OAuth *service.OAuthService
}

func providerFromPath(r *http.Request) (domain.Provider, bool) {
	p, err := domain.ParseProvider(r.PathValue("provider"))
	if err != nil || p == domain.ProviderDefault {
		return "", false
	}
	return p, true
}

// HandleLink godoc
//
//	@Summary		Provider sign-in link
//	@Description	Returns the consent-screen URL of the provider. The client opens it and the provider redirects back with a code.
//	@Tags			Auth
//	@Produce		json
//	@Param			provider	path		string			true	"Provider"	Enums(facebook, google, spotify, vk)
//	@Success		200			{object}	LinkResponse	"link"
//	@Failure		400			{object}	APIError		"unsupported provider"
//	@Router			/api/auth/{provider}/ [get].
func (h *OAuthHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	p, ok := providerFromPath(r)
	if !ok {
		ErrUnsupportedProvider.WriteError(w)
		return
	}

	link, err := h.OAuth.AuthorizeLink(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, LinkResponse{Link: link})
}

// HandleComplete godoc
//
//	@Summary		Complete provider sign-in
//	@Description	Exchanges the provider code for a session token pair. Signs the user up on first use.
//	@Description	When called with a valid bearer token the provider account is linked to the signed-in user instead.
//	@Tags			Auth
//	@Produce		json
//	@Param			provider	path		string				true	"Provider"	Enums(facebook, google, spotify, vk)
//	@Param			code		query		string				true	"Authorization code from the provider redirect"
//	@Success		200			{object}	domain.TokenPair	"access_token, refresh_token, expires_at"
//	@Failure		400			{object}	APIError			"missing code or unsupported provider"
//	@Failure		401			{object}	APIError			"provider rejected the code"
//	@Failure		409			{object}	APIError			"provider account linked to another user"
//	@Security		BearerAuth
//	@Router			/api/auth/{provider}/ [post].
func (h *OAuthHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Resolve the provider
	p, ok := providerFromPath(r)
	if !ok {
		ErrUnsupportedProvider.WriteError(w)
		return
	}

	// 2. Signed-in callers link instead of signing in
	userID, _ := httpx.UserIDFromContext(ctx)

	// 3. Run the flow
	pair, err := h.OAuth.Complete(ctx, p, r.FormValue("code"), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
