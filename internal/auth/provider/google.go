package provider

import (
	"context"
	"cmp"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"golang.org/x/oauth2"
)

type Google struct {
	base
}

func NewGoogle(cfg Config) *Google {
	return &Google{base: newBase(domain.ProviderGoogle, cfg, Endpoints{
		AuthURL:    "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:   "https://oauth2.googleapis.com/token",
		ProfileURL: "https://www.googleapis.com/oauth2/v3/userinfo",
	}, oauth2.AuthStyleInParams)}
}

// AuthorizeURL asks for offline access so the exchange returns a refresh
// token.
func (g *Google) AuthorizeURL() string {
	return g.oauth.AuthCodeURL("", oauth2.AccessTypeOffline)
}

func (g *Google) ExchangeCode(ctx context.Context, code string) (domain.ProviderToken, error) {
	return g.exchange(ctx, code)
}

func (g *Google) RefreshToken(ctx context.Context, refreshToken string) (domain.ProviderToken, error) {
	return g.refresh(ctx, refreshToken)
}

type googleProfile struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Profile string `json:"profile"`
	Link    string `json:"link"`
}

func (g *Google) FetchProfile(ctx context.Context, accessToken string) (domain.Profile, error) {
	var p googleProfile
	if err := g.getJSON(ctx, g.endpoints.ProfileURL, bearer(accessToken), &p); err != nil {
		return domain.Profile{}, err
	}
	if p.Sub == "" {
		return domain.Profile{}, unauthorized("google: profile without sub")
	}

	return domain.Profile{
		ExternalID: p.Sub,
		Name:       p.Name,
		Image:      p.Picture,
		URL:        cmp.Or(p.Profile, p.Link),
	}, nil
}

var (
	_ Adapter   = (*Google)(nil)
	_ Refresher = (*Google)(nil)
)
