package domain

import "time"

// User is the identity root. Accounts is only populated by reads that ask
// for it.
type User struct {
	ID        string
	CreatedAt time.Time
	Accounts  []AuthAccount
}

// AuthAccount is a user's identity at one provider, unique per
// (Provider, ExternalID) and owned by exactly one User.
type AuthAccount struct {
	ID           string
	ExternalID   string
	Name         string
	Image        string
	URL          string
	Provider     Provider
	AccessToken  string
	RefreshToken string // empty for providers without refresh tokens
	ExpiresAt    *int64 // unix seconds, nil when unknown
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAuthAccount builds an account from a freshly fetched profile.
func NewAuthAccount(id string, p Provider, profile Profile, tok ProviderToken) AuthAccount {
	a := AuthAccount{ID: id, Provider: p, ExternalID: profile.ExternalID}
	a.Apply(profile, tok)
	return a
}

// Apply overwrites the profile fields and provider credentials after a
// successful sign-in. Providers such as Google only hand out a refresh token
// on first consent, so an empty one keeps the stored value.
func (a *AuthAccount) Apply(profile Profile, tok ProviderToken) {
	a.Name = profile.Name
	a.Image = profile.Image
	a.URL = profile.URL
	a.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		a.RefreshToken = tok.RefreshToken
	}
	a.ExpiresAt = nil
	if tok.ExpiresAt > 0 {
		exp := tok.ExpiresAt
		a.ExpiresAt = &exp
	}
}

// TokenExpired reports whether the stored provider token is past its expiry.
// Tokens without a known expiry never count as expired.
func (a AuthAccount) TokenExpired(now time.Time) bool {
	return a.ExpiresAt != nil && *a.ExpiresAt <= now.Unix()
}
