package authsdk

import "time"

// TokenResponse is the session token pair returned by sign-in and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the access token expiry in unix seconds.
	ExpiresAt int64 `json:"expires_at"`
}

type LinkResponse struct {
	Link string `json:"link"`
}

type LogoutResponse struct {
	Data bool `json:"data"`
}

// Account is a provider account linked to the user.
type Account struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"_id"`
	Provider   string    `json:"provider"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	AuthAccounts []Account `json:"auth_accounts"`
}

// Account returns the linked account for provider, if any.
func (u *User) Account(provider string) (Account, bool) {
	for _, a := range u.AuthAccounts {
		if a.Provider == provider {
			return a, true
		}
	}
	return Account{}, false
}

// ProviderToken is a provider access token held on the user's behalf.
type ProviderToken struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

type HealthChecks struct {
	Database   string `json:"database"`
	TokenStore string `json:"token_store"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
