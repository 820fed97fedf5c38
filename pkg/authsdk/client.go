package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the BeatMe authentication service.
// It provides access to unauthenticated operations and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func providerPath(provider string) string {
	return "/api/auth/" + url.PathEscape(provider) + "/"
}

// AuthorizeLink returns the provider consent URL.
func (c *SDKClient) AuthorizeLink(ctx context.Context, provider string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, providerPath(provider), nil, "")
	if err != nil {
		return "", err
	}

	var out LinkResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Link, nil
}

// CompleteSignIn trades a provider authorization code for a session token
// pair. A non-empty bearer links the provider account to that session's user.
func (c *SDKClient) CompleteSignIn(ctx context.Context, provider, code, bearer string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, providerPath(provider), url.Values{"code": {code}}, bearer)
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn completes a provider sign-in and wraps the result in a Session.
func (c *SDKClient) SignIn(ctx context.Context, provider, code string) (*Session, error) {
	tokens, err := c.CompleteSignIn(ctx, provider, code, "")
	if err != nil {
		return nil, err
	}
	return newSession(c, tokens), nil
}

// RefreshTokens swaps a refresh token for a new pair. The old pair is
// revoked by the service.
func (c *SDKClient) RefreshTokens(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh/", nil, refreshToken)
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the pair the access token belongs to. The result is false
// when it was already gone.
func (c *SDKClient) Logout(ctx context.Context, accessToken string) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout/", nil, accessToken)
	if err != nil {
		return false, err
	}

	var out LogoutResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Data, nil
}

// NewSessionFromTokens wraps tokens obtained elsewhere.
func (c *SDKClient) NewSessionFromTokens(tokens TokenResponse) *Session {
	return newSession(c, &tokens)
}
