package domain

// TokenPair is the session credential pair handed to clients. ExpiresAt is
// the access token's expiry in unix seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// TokenRecord is the token store payload kept under each issued token.
// Access entries carry RefreshToken, refresh entries carry AccessToken, so
// either side can find its partner when the pair is revoked.
type TokenRecord struct {
	UserID       string `json:"user_id"`
	Exp          int64  `json:"exp"`
	RefreshToken string `json:"refresh_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
}

// Partner returns the paired token recorded in the payload.
func (r TokenRecord) Partner() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	return r.AccessToken
}
