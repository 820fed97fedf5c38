package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/beatme/internal/auth/http"
	"github.com/aussiebroadwan/beatme/internal/auth/metrics"
	"github.com/aussiebroadwan/beatme/internal/auth/provider"
	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
	"github.com/aussiebroadwan/beatme/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	provider domain.Provider
	external string
	fail     bool
}

func (s *stubAdapter) Provider() domain.Provider { return s.provider }
func (s *stubAdapter) AuthorizeURL() string      { return "https://consent.example/" + s.provider.Slug() }

func (s *stubAdapter) ExchangeCode(_ context.Context, code string) (domain.ProviderToken, error) {
	if s.fail {
		return domain.ProviderToken{}, provider.ErrUnauthorized
	}
	return domain.ProviderToken{AccessToken: "provider-" + code}, nil
}

func (s *stubAdapter) FetchProfile(context.Context, string) (domain.Profile, error) {
	return domain.Profile{ExternalID: s.external, Name: "Someone"}, nil
}

// countingTokens counts token store reads.
type countingTokens struct {
	tokenstore.Store
	gets atomic.Int64
}

func (c *countingTokens) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets.Add(1)
	return c.Store.Get(ctx, key)
}

type testServer struct {
	handler http.Handler
	tokens  *countingTokens
	spotify *stubAdapter
	svc     *service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	hmac, err := jwtx.NewHMAC("HS256", []byte("test-secret"))
	require.NoError(t, err)

	tokens := &countingTokens{Store: tokenstore.NewMemory()}
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	spotify := &stubAdapter{provider: domain.ProviderSpotify, external: "sp-1"}
	vk := &stubAdapter{provider: domain.ProviderVK, external: "vk-1"}
	providers := provider.NewRegistry(spotify, vk)

	tokenSvc := service.NewTokenService(hmac, tokens, time.Hour, 24*time.Hour, rec)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := authhttp.NewRouter("test", st, tokens, reg, logger)
	r.TokenService = tokenSvc
	r.OAuthService = &service.OAuthService{Providers: providers, Store: st, Tokens: tokenSvc, Metrics: rec}
	r.AccountService = &service.AccountService{Providers: providers, Store: st}
	r.ApplyRoutes()

	return &testServer{handler: r, tokens: tokens, spotify: spotify, svc: tokenSvc}
}

func (s *testServer) do(t *testing.T, method, target, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (s *testServer) signIn(t *testing.T, p, code, bearer string) domain.TokenPair {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/"+p+"/?code="+code, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[domain.TokenPair](t, rec)
}

func TestAuthLink(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/auth/spotify/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://consent.example/spotify", decode[authhttp.LinkResponse](t, rec).Link)

	for _, p := range []string{"google", "default", "myspace"} {
		rec := s.do(t, http.MethodGet, "/api/auth/"+p+"/", "")
		require.Equal(t, http.StatusBadRequest, rec.Code, p)
		require.Equal(t, "UnsupportedProvider", decode[authhttp.APIError](t, rec).Code)
	}
}

func TestAuthComplete(t *testing.T) {
	t.Parallel()

	t.Run("missing code", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/api/auth/spotify/", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[authhttp.APIError](t, rec)
		require.Equal(t, "BadRequest", body.Code)
		require.Equal(t, "Params are wrong", body.Message)
	})

	t.Run("provider rejects code", func(t *testing.T) {
		s := newTestServer(t)
		s.spotify.fail = true

		rec := s.do(t, http.MethodPost, "/api/auth/spotify/?code=abc", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Unauthorized", decode[authhttp.APIError](t, rec).Code)
	})

	t.Run("sign in then link", func(t *testing.T) {
		s := newTestServer(t)

		pair := s.signIn(t, "spotify", "abc", "")
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Greater(t, pair.ExpiresAt, time.Now().Unix())

		s.signIn(t, "vk", "def", pair.AccessToken)

		rec := s.do(t, http.MethodGet, "/api/users/me/", pair.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code)
		me := decode[authhttp.UserResponse](t, rec)
		require.Len(t, me.AuthAccounts, 2)
		require.Equal(t, "sp-1", me.AuthAccounts[0].ExternalID)
		require.Equal(t, "VK", me.AuthAccounts[1].Provider)
	})

	t.Run("linking an identity owned by someone else", func(t *testing.T) {
		s := newTestServer(t)

		s.signIn(t, "spotify", "abc", "")
		other := s.signIn(t, "vk", "def", "")

		rec := s.do(t, http.MethodPost, "/api/auth/spotify/?code=abc", other.AccessToken)
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAuthGate(t *testing.T) {
	t.Parallel()

	t.Run("anonymous passes through", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodGet, "/api/auth/spotify/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Zero(t, s.tokens.gets.Load())
	})

	t.Run("bad signature is rejected without a store lookup", func(t *testing.T) {
		s := newTestServer(t)

		other, err := jwtx.NewHMAC("HS256", []byte("other-secret"))
		require.NoError(t, err)
		now := time.Now()
		forged, err := other.Sign(jwtx.NewAccessClaims("user-1", now, now.Add(time.Hour)))
		require.NoError(t, err)

		// Even a public route refuses an invalid bearer.
		rec := s.do(t, http.MethodGet, "/api/auth/spotify/", forged)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
		require.Zero(t, s.tokens.gets.Load())
	})

	t.Run("valid but unknown token", func(t *testing.T) {
		s := newTestServer(t)

		hmac, err := jwtx.NewHMAC("HS256", []byte("test-secret"))
		require.NoError(t, err)
		now := time.Now()
		unknown, err := hmac.Sign(jwtx.NewAccessClaims("user-1", now, now.Add(time.Hour)))
		require.NoError(t, err)

		rec := s.do(t, http.MethodGet, "/api/users/me/", unknown)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.EqualValues(t, 1, s.tokens.gets.Load())
	})

	t.Run("protected route without a token", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodGet, "/api/users/me/", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Session is wrong", decode[authhttp.APIError](t, rec).Message)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	pair := s.signIn(t, "spotify", "abc", "")

	rec := s.do(t, http.MethodPost, "/api/auth/logout/", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[authhttp.LogoutResponse](t, rec).Data)

	// Both tokens are dead now.
	rec = s.do(t, http.MethodPost, "/api/auth/logout/", pair.AccessToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/refresh/", pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/logout/", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	pair := s.signIn(t, "spotify", "abc", "")

	rec := s.do(t, http.MethodPost, "/api/auth/refresh/", pair.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := decode[domain.TokenPair](t, rec)
	require.NotEqual(t, pair.AccessToken, fresh.AccessToken)

	// Single use.
	rec = s.do(t, http.MethodPost, "/api/auth/refresh/", pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The old access token went with it.
	rec = s.do(t, http.MethodGet, "/api/users/me/", pair.AccessToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/me/", fresh.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	// An access token can't be used to refresh. Only the gate reads the store.
	before := s.tokens.gets.Load()
	rec = s.do(t, http.MethodPost, "/api/auth/refresh/", fresh.AccessToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, before+1, s.tokens.gets.Load())

	rec = s.do(t, http.MethodGet, "/api/users/me/", fresh.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProviderToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	pair := s.signIn(t, "spotify", "abc", "")

	rec := s.do(t, http.MethodGet, "/api/users/me/providers/spotify/token/", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "provider-abc", decode[authhttp.ProviderTokenResponse](t, rec).AccessToken)

	rec = s.do(t, http.MethodGet, "/api/users/me/providers/vk/token/", pair.AccessToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/livez", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[authhttp.HealthResponse](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[authhttp.HealthResponse](t, rec)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.TokenStore)

	s.signIn(t, "spotify", "abc", "")
	rec = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `beatme_oauth_flows_total{outcome="success",provider="spotify"} 1`)

	rec = s.do(t, http.MethodGet, "/livez", "")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(t, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, path := range []string{"/api/auth/{provider}/", "/api/auth/logout/", "/api/auth/refresh/", "/api/users/me/"} {
		require.Contains(t, rec.Body.String(), path)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/refresh/", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
