package provider

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"golang.org/x/oauth2"
)

const DefaultFacebookVersion = "v12.0"

// Facebook exchanges codes with a GET against the Graph API, which x/oauth2
// can't express, so only AuthorizeURL goes through the oauth2 config.
type Facebook struct {
	base
}

func NewFacebook(cfg Config) *Facebook {
	version := cfg.APIVersion
	if version == "" {
		version = DefaultFacebookVersion
	}
	return &Facebook{base: newBase(domain.ProviderFacebook, cfg, Endpoints{
		AuthURL:    "https://www.facebook.com/" + version + "/dialog/oauth",
		TokenURL:   "https://graph.facebook.com/" + version + "/oauth/access_token",
		ProfileURL: "https://graph.facebook.com/" + version + "/me",
	}, oauth2.AuthStyleInParams)}
}

func (f *Facebook) AuthorizeURL() string {
	return f.oauth.AuthCodeURL("")
}

type facebookToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (f *Facebook) ExchangeCode(ctx context.Context, code string) (domain.ProviderToken, error) {
	q := url.Values{
		"code":          {code},
		"redirect_uri":  {f.creds.RedirectURI},
		"client_id":     {f.creds.ClientID},
		"client_secret": {f.creds.ClientSecret},
	}

	var tok facebookToken
	if err := f.getJSON(ctx, withQuery(f.endpoints.TokenURL, q), nil, &tok); err != nil {
		return domain.ProviderToken{}, err
	}
	if tok.AccessToken == "" {
		return domain.ProviderToken{}, unauthorized("facebook: empty access_token")
	}

	out := domain.ProviderToken{AccessToken: tok.AccessToken}
	if tok.ExpiresIn > 0 {
		out.ExpiresAt = f.now().Add(time.Duration(tok.ExpiresIn) * time.Second).Unix()
	}
	return out, nil
}

type facebookProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Link      string `json:"link"`
	Picture   struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func (f *Facebook) FetchProfile(ctx context.Context, accessToken string) (domain.Profile, error) {
	q := url.Values{
		"access_token": {accessToken},
		"fields":       {"id,link,last_name,first_name,picture"},
	}

	var p facebookProfile
	if err := f.getJSON(ctx, withQuery(f.endpoints.ProfileURL, q), nil, &p); err != nil {
		return domain.Profile{}, err
	}
	if p.ID == "" {
		return domain.Profile{}, unauthorized("facebook: profile without id")
	}

	return domain.Profile{
		ExternalID: p.ID,
		Name:       joinName(p.FirstName, p.LastName),
		Image:      p.Picture.Data.URL,
		URL:        p.Link,
	}, nil
}

func withQuery(endpoint string, q url.Values) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + q.Encode()
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

var _ Adapter = (*Facebook)(nil)
