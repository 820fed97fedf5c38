package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Env:                     "dev",
		LogLevel:                "error",
		LogFormat:               "text",
		Port:                    0,
		ShutdownGracePeriod:     time.Second,
		HousekeepingInterval:    time.Hour,
		DatabaseFile:            filepath.Join(t.TempDir(), "auth.db"),
		TokenStore:              TokenStoreMemory,
		JWTSecret:               "test-secret",
		JWTAlgorithm:            "HS256",
		AccessTokenLifetimeSec:  60,
		RefreshTokenLifetimeSec: 120,
		ProviderHTTPTimeout:     time.Second,
		ProviderTokenKey:        "test-provider-key",
		Google: ProviderConfig{
			ClientID:    "gid",
			RedirectURI: "https://app.example/cb",
		},
	}
}

func TestNewWiresRoutes(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	t.Run("ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("configured provider link", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Link string `json:"link"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body.Link, "client_id=gid")
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/vk/", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "go_goroutines")
	})
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.TokenStore = TokenStoreRedis
	cfg.RedisHost = "127.0.0.1"
	cfg.RedisPort = 1

	_, err := New(cfg)
	require.Error(t, err)
}
