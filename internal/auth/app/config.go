package app

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/provider"
	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
	"github.com/caarlos0/env/v11"
)

// ProviderConfig holds one OAuth app's settings, read from
// {FACEBOOK,GOOGLE,SPOTIFY,VK}_*. A provider with no CLIENT_ID is disabled.
type ProviderConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
	Scope        string `env:"SCOPE"`
	APIVersion   string `env:"API_VERSION"` // Facebook and VK only

	// Endpoint overrides, empty uses the provider's public URLs.
	AuthURL    string `env:"AUTH_URL"`
	TokenURL   string `env:"TOKEN_URL"`
	ProfileURL string `env:"PROFILE_URL"`
}

// Enabled reports whether the provider is configured.
func (p ProviderConfig) Enabled() bool { return p.ClientID != "" }

func (p ProviderConfig) endpoints() provider.Endpoints {
	return provider.Endpoints{
		AuthURL:    p.AuthURL,
		TokenURL:   p.TokenURL,
		ProfileURL: p.ProfileURL,
	}
}

func (p ProviderConfig) credentials() provider.Credentials {
	return provider.Credentials{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURI:  p.RedirectURI,
		Scope:        p.Scope,
	}
}

type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`         // dev, staging, prod
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text
	Port      int    `env:"PORT" envDefault:"8080"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`

	// ProviderTokenKey seals provider tokens in the database. Empty keeps
	// them in the clear.
	ProviderTokenKey string `env:"PROVIDER_TOKEN_KEY"`

	// TokenStore selects the session token backend: redis or memory.
	TokenStore    string `env:"TOKEN_STORE" envDefault:"redis"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	JWTSecret               string `env:"JWT_SECRET" envDefault:"dev"`
	JWTAlgorithm            string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	AccessTokenLifetimeSec  int    `env:"ACCESS_TOKEN_LIFETIME_SECONDS" envDefault:"604800"`
	RefreshTokenLifetimeSec int    `env:"REFRESH_TOKEN_LIFETIME_SECONDS" envDefault:"2592000"`

	ProviderHTTPTimeout time.Duration `env:"PROVIDER_HTTP_TIMEOUT" envDefault:"10s"`
	CORSOrigins         []string      `env:"CORS_ORIGINS" envSeparator:","`

	Facebook ProviderConfig `envPrefix:"FACEBOOK_"`
	Google   ProviderConfig `envPrefix:"GOOGLE_"`
	Spotify  ProviderConfig `envPrefix:"SPOTIFY_"`
	VK       ProviderConfig `envPrefix:"VK_"`
}

const (
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Facebook.APIVersion == "" {
		cfg.Facebook.APIVersion = provider.DefaultFacebookVersion
	}
	if cfg.VK.APIVersion == "" {
		cfg.VK.APIVersion = provider.DefaultVKVersion
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service can't run with.
func (c Config) Validate() error {
	var errs []error

	if c.Env != "dev" && c.JWTSecret == "dev" {
		errs = append(errs, errors.New("JWT_SECRET must be set outside dev"))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not one of HS256, HS384, HS512", c.JWTAlgorithm))
	}
	if c.AccessTokenLifetimeSec <= 0 || c.RefreshTokenLifetimeSec <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.RefreshTokenLifetimeSec < c.AccessTokenLifetimeSec {
		errs = append(errs, errors.New("REFRESH_TOKEN_LIFETIME_SECONDS must not be shorter than the access lifetime"))
	}
	switch c.TokenStore {
	case TokenStoreRedis, TokenStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("TOKEN_STORE %q is not one of redis, memory", c.TokenStore))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenLifetimeSec) * time.Second
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenLifetimeSec) * time.Second
}

func (c Config) redis() tokenstore.RedisConfig {
	return tokenstore.RedisConfig{
		Addr:     net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort)),
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
