package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/beatme/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiry(now))
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(now), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(now), jwtx.ErrNotYetValid)
	})
}

func TestNewClaims(t *testing.T) {
	now := time.Unix(1700000000, 0)

	access := jwtx.NewAccessClaims("user-1", now, now.Add(time.Hour))
	require.Equal(t, "user-1", access.UserID)
	require.Equal(t, "user-1", access.Subject)
	require.False(t, access.IsRefresh())
	require.NotEmpty(t, access.ID)

	refresh := jwtx.NewRefreshClaims("user-1", "access-token", now, now.Add(24*time.Hour))
	require.True(t, refresh.IsRefresh())
	require.Equal(t, "access-token", refresh.AccessToken)
	require.NotEqual(t, access.ID, refresh.ID)
}
