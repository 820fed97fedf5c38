package http

//go:generate swag init --generalInfo router.go --dir . --parseInternal --output ../../../api/auth --outputTypes go

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/metrics"
	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
	"github.com/aussiebroadwan/beatme/pkg/httpx"
	"github.com/aussiebroadwan/beatme/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/aussiebroadwan/beatme/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	corsOrigins  []string

	store    store.Store
	tokens   tokenstore.Store
	gatherer prometheus.Gatherer

	TokenService   *service.TokenService
	OAuthService   *service.OAuthService
	AccountService *service.AccountService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	tokens tokenstore.Store,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
	corsOrigins ...string,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		tokens:       tokens,
		gatherer:     gatherer,
		logger:       logger,
		corsOrigins:  corsOrigins,
	}
}

// ApplyRoutes registers every route and builds the global middleware chain:
// request logging, CORS, then the auth gate. Services must be set first.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(r.corsOrigins...),
		AuthGate(r.TokenService),
	}

	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			BeatMe Authentication API
//	@version		0.1.0
//	@description	Sign-in through Facebook, Google, Spotify or VK and session token management.
//	@description
//	@description				Session tokens are HMAC-signed JWTs that are only valid while present in the token store.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/beatme
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.handler == nil {
		httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
		return
	}
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	oauth := &OAuthHandler{OAuth: r.OAuthService}

	// GET link - moderate rate limit (no provider call)
	r.Mux.Handle("GET /api/auth/{provider}/{$}",
		httpx.Chain(http.HandlerFunc(oauth.HandleLink),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST complete - strict rate limit (provider round trips, token minting)
	r.Mux.Handle("POST /api/auth/{provider}/{$}",
		httpx.Chain(http.HandlerFunc(oauth.HandleComplete),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/logout/{$}",
		httpx.Chain(&LogoutHandler{Tokens: r.TokenService},
			httpx.RequireUser(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/refresh/{$}",
		httpx.Chain(&RefreshHandler{Tokens: r.TokenService},
			httpx.RequireUser(),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Accounts: r.AccountService}

	r.Mux.Handle("GET /api/users/me/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RequireUser(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Calls the provider when the stored token has expired
	r.Mux.Handle("GET /api/users/me/providers/{provider}/token/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleProviderToken),
			httpx.RequireUser(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.tokens),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(metrics.Handler(r.gatherer),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}
}
