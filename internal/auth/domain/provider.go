package domain

import (
	"errors"
	"strings"
)

// Provider identifies the OAuth identity source of an AuthAccount.
type Provider string

const (
	ProviderDefault  Provider = "DEFAULT"
	ProviderSpotify  Provider = "SPOTIFY"
	ProviderGoogle   Provider = "GOOGLE"
	ProviderVK       Provider = "VK"
	ProviderFacebook Provider = "FACEBOOK"
)

var ErrUnknownProvider = errors.New("domain: unknown provider")

// Providers lists every provider that can back a sign-in flow.
func Providers() []Provider {
	return []Provider{ProviderFacebook, ProviderGoogle, ProviderSpotify, ProviderVK}
}

// ParseProvider maps a route segment ("spotify") or stored value ("SPOTIFY")
// to a Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case ProviderDefault, ProviderSpotify, ProviderGoogle, ProviderVK, ProviderFacebook:
		return p, nil
	default:
		return "", ErrUnknownProvider
	}
}

// Slug is the lowercase form used in URLs and metric labels.
func (p Provider) Slug() string { return strings.ToLower(string(p)) }

// Profile is a provider identity normalised across providers.
type Profile struct {
	ExternalID string
	Name       string
	Image      string
	URL        string
}

// ProviderToken is the credential a provider handed back for a user.
// ExpiresAt is absolute unix seconds, zero when the provider gave none.
type ProviderToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}
