package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"golang.org/x/oauth2"
)

const DefaultVKVersion = "5.131"

// VK wants the API version on every call, including the token exchange.
type VK struct {
	base
	version string
}

func NewVK(cfg Config) *VK {
	version := cfg.APIVersion
	if version == "" {
		version = DefaultVKVersion
	}
	return &VK{
		base: newBase(domain.ProviderVK, cfg, Endpoints{
			AuthURL:    "https://oauth.vk.com/authorize",
			TokenURL:   "https://oauth.vk.com/access_token",
			ProfileURL: "https://api.vk.com/method/users.get",
		}, oauth2.AuthStyleInParams),
		version: version,
	}
}

func (v *VK) AuthorizeURL() string {
	return v.oauth.AuthCodeURL("", oauth2.SetAuthURLParam("v", v.version))
}

// ExchangeCode returns no refresh token. An expires_in of 0 (offline scope)
// leaves ExpiresAt unset.
func (v *VK) ExchangeCode(ctx context.Context, code string) (domain.ProviderToken, error) {
	tok, err := v.exchange(ctx, code, oauth2.SetAuthURLParam("v", v.version))
	if err != nil {
		return domain.ProviderToken{}, err
	}
	tok.RefreshToken = ""
	return tok, nil
}

type vkUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Photo     string `json:"photo_400_orig"`
}

func (v *VK) FetchProfile(ctx context.Context, accessToken string) (domain.Profile, error) {
	q := url.Values{
		"fields":       {"uid,first_name,last_name,photo_400_orig"},
		"access_token": {accessToken},
		"v":            {v.version},
	}

	// VK answers API errors with 200 and an "error" object instead of
	// "response", so the shape is checked by hand.
	var payload struct {
		Response json.RawMessage `json:"response"`
	}
	if err := v.getJSON(ctx, withQuery(v.endpoints.ProfileURL, q), nil, &payload); err != nil {
		return domain.Profile{}, err
	}

	var users []vkUser
	if err := json.Unmarshal(payload.Response, &users); err != nil {
		return domain.Profile{}, unauthorized("vk: response is not a user list")
	}
	if len(users) == 0 {
		return domain.Profile{}, unauthorized("vk: empty user list")
	}

	u := users[0]
	id := strconv.FormatInt(u.ID, 10)
	return domain.Profile{
		ExternalID: id,
		Name:       joinName(u.FirstName, u.LastName),
		Image:      u.Photo,
		URL:        "https://vk.com/id" + id,
	}, nil
}

var _ Adapter = (*VK)(nil)
