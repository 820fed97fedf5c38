package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// refreshLeeway refreshes a little before the access token actually expires.
const refreshLeeway = 30 * time.Second

// Session is a signed-in user. Methods refresh the token pair when the
// access token is about to expire.
type Session struct {
	client *SDKClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	// now is swapped in tests.
	now func() time.Time
}

func newSession(client *SDKClient, tokens *TokenResponse) *Session {
	s := &Session{client: client, now: time.Now}
	s.set(tokens)
	return s
}

// set must be called with mu held, or before the session is shared.
func (s *Session) set(tokens *TokenResponse) {
	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.expiresAt = time.Unix(tokens.ExpiresAt, 0).Add(-refreshLeeway)
}

// Tokens returns the current pair.
func (s *Session) Tokens() TokenResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TokenResponse{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		ExpiresAt:    s.expiresAt.Add(refreshLeeway).Unix(),
	}
}

func (s *Session) AccessToken() string  { return s.Tokens().AccessToken }
func (s *Session) RefreshToken() string { return s.Tokens().RefreshToken }

// Refresh swaps the pair now. Refresh tokens are single use, so concurrent
// callers are serialised.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}
	tokens, err := s.client.RefreshTokens(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.set(tokens)
	return nil
}

// getValidToken returns the access token, refreshing first if it is about
// to expire.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

func (s *Session) do(ctx context.Context, method, path string, form url.Values, target any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	resp, err := s.client.doRequest(ctx, method, path, form, token)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

// Me returns the signed-in user with their linked accounts.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.do(ctx, http.MethodGet, "/api/users/me/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ProviderToken returns a usable provider access token for the user.
func (s *Session) ProviderToken(ctx context.Context, provider string) (*ProviderToken, error) {
	var tok ProviderToken
	path := "/api/users/me/providers/" + url.PathEscape(provider) + "/token/"
	if err := s.do(ctx, http.MethodGet, path, nil, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// LinkProvider attaches another provider account to this user. The
// service answers with a fresh pair, which replaces the current one.
func (s *Session) LinkProvider(ctx context.Context, provider, code string) error {
	var tokens TokenResponse
	if err := s.do(ctx, http.MethodPost, providerPath(provider), url.Values{"code": {code}}, &tokens); err != nil {
		return err
	}

	s.mu.Lock()
	s.set(&tokens)
	s.mu.Unlock()
	return nil
}

// Logout revokes the session. The session can't be used afterwards.
func (s *Session) Logout(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoked, err := s.client.Logout(ctx, s.accessToken)
	if err != nil {
		return false, err
	}
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	return revoked, nil
}
