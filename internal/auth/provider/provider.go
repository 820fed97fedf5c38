// Package provider adapts the OAuth providers users sign in with to one
// interface: build the consent URL, exchange the returned code for provider
// tokens, and fetch a normalised profile.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
)

var (
	// ErrUnauthorized covers every provider-side failure: transport errors,
	// non-2xx answers and payloads we can't use.
	ErrUnauthorized = errors.New("provider: unauthorized")

	ErrUnsupportedProvider = errors.New("provider: unsupported provider")
)

// Adapter is implemented once per provider.
type Adapter interface {
	Provider() domain.Provider

	// AuthorizeURL is the consent screen the client should open.
	AuthorizeURL() string

	// ExchangeCode trades an authorization code for provider tokens.
	ExchangeCode(ctx context.Context, code string) (domain.ProviderToken, error)

	// FetchProfile loads the identity behind a provider access token.
	FetchProfile(ctx context.Context, accessToken string) (domain.Profile, error)
}

// Refresher is implemented by adapters whose providers issue refresh tokens.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (domain.ProviderToken, error)
}

// Credentials are the per-provider app settings.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
}

// Endpoints overrides provider URLs. Empty fields use the provider default.
type Endpoints struct {
	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// Config is shared by every adapter constructor.
type Config struct {
	Credentials

	// APIVersion is used by Facebook ("v12.0") and VK ("5.131").
	APIVersion string

	Endpoints Endpoints

	// HTTPClient defaults to a client with a 10 second timeout.
	HTTPClient *http.Client

	// Now defaults to time.Now.
	Now func() time.Time
}

func unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}
