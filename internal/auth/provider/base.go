package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// base carries what every adapter needs: credentials, resolved endpoints,
// the shared HTTP client and an oauth2 config for the code flow.
type base struct {
	provider  domain.Provider
	creds     Credentials
	endpoints Endpoints
	client    *http.Client
	now       func() time.Time
	oauth     *oauth2.Config
}

func newBase(p domain.Provider, cfg Config, defaults Endpoints, style oauth2.AuthStyle) base {
	ep := cfg.Endpoints
	if ep.AuthURL == "" {
		ep.AuthURL = defaults.AuthURL
	}
	if ep.TokenURL == "" {
		ep.TokenURL = defaults.TokenURL
	}
	if ep.ProfileURL == "" {
		ep.ProfileURL = defaults.ProfileURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	var scopes []string
	if cfg.Scope != "" {
		// Passed through verbatim; Facebook wants commas, the rest spaces.
		scopes = []string{cfg.Scope}
	}

	return base{
		provider:  p,
		creds:     cfg.Credentials,
		endpoints: ep,
		client:    client,
		now:       now,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   ep.AuthURL,
				TokenURL:  ep.TokenURL,
				AuthStyle: style,
			},
		},
	}
}

func (b *base) Provider() domain.Provider { return b.provider }

// oauthContext makes x/oauth2 use the shared client.
func (b *base) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, b.client)
}

// exchange runs the standard authorization_code grant.
func (b *base) exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (domain.ProviderToken, error) {
	tok, err := b.oauth.Exchange(b.oauthContext(ctx), code, opts...)
	if err != nil {
		return domain.ProviderToken{}, describeOAuthError(err)
	}
	return fromOAuth2(tok), nil
}

// refresh runs the refresh_token grant and keeps the old refresh token when
// the provider doesn't rotate it.
func (b *base) refresh(ctx context.Context, refreshToken string) (domain.ProviderToken, error) {
	if refreshToken == "" {
		return domain.ProviderToken{}, unauthorized("%s: no refresh token", b.provider)
	}

	src := b.oauth.TokenSource(b.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return domain.ProviderToken{}, describeOAuthError(err)
	}

	out := fromOAuth2(tok)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

func fromOAuth2(tok *oauth2.Token) domain.ProviderToken {
	out := domain.ProviderToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		out.ExpiresAt = tok.Expiry.Unix()
	}
	return out
}

func describeOAuthError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return unauthorized("token endpoint returned %d", re.Response.StatusCode)
	}
	return unauthorized("token exchange: %v", err)
}

// getJSON issues a GET and decodes a 2xx JSON answer into out.
func (b *base) getJSON(ctx context.Context, endpoint string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unauthorized("build request: %v", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return unauthorized("%s request: %v", b.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return unauthorized("%s read body: %v", b.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unauthorized("%s returned %d", b.provider, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return unauthorized("%s decode: %v", b.provider, err)
	}
	return nil
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}
