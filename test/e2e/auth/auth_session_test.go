package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/beatme/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	env := setupService(t)

	live, err := env.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := env.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.TokenStore)
}

func TestAuthorizeLinks(t *testing.T) {
	env := setupService(t)

	link, err := env.client.AuthorizeLink(t.Context(), "google")
	require.NoError(t, err)
	require.Contains(t, link, "client_id=google-client")
	require.Contains(t, link, "access_type=offline")

	// VK has no client id in this environment.
	_, err = env.client.AuthorizeLink(t.Context(), "vk")
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeUnsupportedProvider)

	_, err = env.client.AuthorizeLink(t.Context(), "myspace")
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeUnsupportedProvider)
}

// TestSignInRefreshLogout walks a session through its whole life.
func TestSignInRefreshLogout(t *testing.T) {
	env := setupService(t)
	ctx := t.Context()

	session := signIn(t, env, "google", "alice")
	old := session.Tokens()

	me, err := session.Me(ctx)
	require.NoError(t, err)
	acc, ok := me.Account("google")
	require.True(t, ok)
	require.Equal(t, "g-alice", acc.ExternalID)
	require.Equal(t, "Alice", acc.Name)

	require.NoError(t, session.Refresh(ctx))
	fresh := session.Tokens()
	require.NotEqual(t, old.AccessToken, fresh.AccessToken, "access token should rotate")
	require.NotEqual(t, old.RefreshToken, fresh.RefreshToken, "refresh token should rotate")

	// The old pair is gone: its access token and refresh token both fail.
	stale := env.client.NewSessionFromTokens(old)
	_, err = stale.Me(ctx)
	require.True(t, authsdk.IsUnauthorized(err), "got %v", err)

	_, err = env.client.RefreshTokens(ctx, old.RefreshToken)
	require.True(t, authsdk.IsUnauthorized(err), "got %v", err)

	again, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, me.ID, again.ID)

	revoked, err := env.client.Logout(ctx, fresh.AccessToken)
	require.NoError(t, err)
	require.True(t, revoked)

	_, err = env.client.RefreshTokens(ctx, fresh.RefreshToken)
	require.True(t, authsdk.IsUnauthorized(err), "refresh after logout: got %v", err)

	_, err = env.client.Logout(ctx, fresh.AccessToken)
	require.True(t, authsdk.IsUnauthorized(err), "second logout: got %v", err)
}

func TestSignInIsStable(t *testing.T) {
	env := setupService(t)

	first := signIn(t, env, "google", "bob")
	second := signIn(t, env, "google", "bob")

	a, err := first.Me(t.Context())
	require.NoError(t, err)
	b, err := second.Me(t.Context())
	require.NoError(t, err)

	require.Equal(t, a.ID, b.ID)
	require.Len(t, b.AuthAccounts, 1)
}

func TestBadCode(t *testing.T) {
	env := setupService(t)

	_, err := env.client.SignIn(t.Context(), "google", "")
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeBadRequest)

	_, err = env.client.SignIn(t.Context(), "google", "garbage")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeUnauthorized)
}

// TestSessionsSurviveRestart shows sessions live in Redis, not in process.
func TestSessionsSurviveRestart(t *testing.T) {
	env := setupService(t)
	session := signIn(t, env, "google", "carol")
	tokens := session.Tokens()

	require.NoError(t, env.app.Close())

	restarted := startService(t, env.cfg)
	resumed := restarted.client.NewSessionFromTokens(tokens)

	me, err := resumed.Me(t.Context())
	require.NoError(t, err)
	_, ok := me.Account("google")
	require.True(t, ok)
}
