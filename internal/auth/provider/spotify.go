package provider

import (
	"context"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"golang.org/x/oauth2"
)

// Spotify authenticates the client with HTTP Basic on the token endpoint.
type Spotify struct {
	base
}

func NewSpotify(cfg Config) *Spotify {
	return &Spotify{base: newBase(domain.ProviderSpotify, cfg, Endpoints{
		AuthURL:    "https://accounts.spotify.com/authorize",
		TokenURL:   "https://accounts.spotify.com/api/token",
		ProfileURL: "https://api.spotify.com/v1/me",
	}, oauth2.AuthStyleInHeader)}
}

func (s *Spotify) AuthorizeURL() string {
	return s.oauth.AuthCodeURL("")
}

func (s *Spotify) ExchangeCode(ctx context.Context, code string) (domain.ProviderToken, error) {
	return s.exchange(ctx, code)
}

func (s *Spotify) RefreshToken(ctx context.Context, refreshToken string) (domain.ProviderToken, error) {
	return s.refresh(ctx, refreshToken)
}

type spotifyProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

func (s *Spotify) FetchProfile(ctx context.Context, accessToken string) (domain.Profile, error) {
	var p spotifyProfile
	if err := s.getJSON(ctx, s.endpoints.ProfileURL, bearer(accessToken), &p); err != nil {
		return domain.Profile{}, err
	}
	if p.ID == "" {
		return domain.Profile{}, unauthorized("spotify: profile without id")
	}

	out := domain.Profile{
		ExternalID: p.ID,
		Name:       p.DisplayName,
		URL:        p.ExternalURLs.Spotify,
	}
	// Last listed image.
	if n := len(p.Images); n > 0 {
		out.Image = p.Images[n-1].URL
	}
	return out, nil
}

var (
	_ Adapter   = (*Spotify)(nil)
	_ Refresher = (*Spotify)(nil)
)
