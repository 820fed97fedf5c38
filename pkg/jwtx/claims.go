package jwtx

import (
	"time"

	"github.com/aussiebroadwan/beatme/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Session lifetimes used when nothing is configured.
const (
	DefaultAccessTokenTTL  = 7 * 24 * time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Claims is the claim set shared by access and refresh tokens. Access tokens
// carry UserID; refresh tokens additionally carry the access token they were
// minted alongside, which is what makes a refresh single-use.
type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"user_id,omitempty"`

	// AccessToken is only set on refresh tokens.
	AccessToken string `json:"access_token,omitempty"`
}

// NewAccessClaims builds the claims for an access token expiring at exp.
func NewAccessClaims(userID string, now, exp time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(userID, now, exp),
		UserID:           userID,
	}
}

// NewRefreshClaims builds the claims for a refresh token paired with
// accessToken.
func NewRefreshClaims(userID, accessToken string, now, exp time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(userID, now, exp),
		UserID:           userID,
		AccessToken:      accessToken,
	}
}

func registered(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two
// tokens minted for the same user in the same second must still differ,
// because the token string is the token store key.
func NewJTI() string {
	return cryptox.MustGenerateToken(cryptox.TokenSize128)
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool { return c.AccessToken != "" }

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
