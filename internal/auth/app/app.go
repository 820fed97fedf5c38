package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/beatme/internal/auth/http"
	"github.com/aussiebroadwan/beatme/internal/auth/metrics"
	"github.com/aussiebroadwan/beatme/internal/auth/provider"
	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
	"github.com/aussiebroadwan/beatme/pkg/cryptox"
	"github.com/aussiebroadwan/beatme/pkg/jwtx"
	"github.com/aussiebroadwan/beatme/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	tokens    tokenstore.Store
	sweeper   tokenstore.Sweeper // only set for the in-memory store
	codec     *jwtx.HMAC
	providers *provider.Registry
	registry  *prometheus.Registry
	metrics   *metrics.Collector

	// Services
	tokenService        *service.TokenService
	oauthService        *service.OAuthService
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initTokenStore(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	codec, err := jwtx.NewHMAC(cfg.JWTAlgorithm, []byte(cfg.JWTSecret))
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.codec = codec

	app.initProviders()
	app.initMetrics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"providers", app.providers.Providers(),
		"token_store", app.cfg.TokenStore,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// Close releases the database and token store without touching the HTTP
// server. Use it for applications that were never Run.
func (app *Application) Close() error { return app.closeStores() }

func (app *Application) closeStores() error {
	var errs []error
	if err := app.tokens.Close(); err != nil {
		app.logger.Error("error closing token store", "error", err)
		errs = append(errs, err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	var opts []sqlite.Option
	if app.cfg.ProviderTokenKey != "" {
		sealer, err := cryptox.NewSealer([]byte(app.cfg.ProviderTokenKey))
		if err != nil {
			return fmt.Errorf("failed to initialize token sealer: %w", err)
		}
		opts = append(opts, sqlite.WithSealer(sealer))
	} else if app.cfg.Env != "dev" {
		app.logger.Warn("PROVIDER_TOKEN_KEY is not set; provider tokens are stored unencrypted")
	}

	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile), opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initTokenStore connects the session token backend. Redis must answer a
// ping at startup.
func (app *Application) initTokenStore(ctx context.Context) error {
	switch app.cfg.TokenStore {
	case TokenStoreMemory:
		mem := tokenstore.NewMemory()
		app.tokens = mem
		app.sweeper = mem
		app.logger.Warn("using in-memory token store; sessions are lost on restart")
	default:
		rcfg := app.cfg.redis()
		rs, err := tokenstore.NewRedis(ctx, rcfg)
		if err != nil {
			return fmt.Errorf("failed to connect token store: %w", err)
		}
		app.tokens = rs
		app.logger.Info("token store connected", "addr", rcfg.Addr, "db", rcfg.DB)
	}
	return nil
}

// initProviders registers an adapter for every provider with a client id.
func (app *Application) initProviders() {
	client := &http.Client{Timeout: app.cfg.ProviderHTTPTimeout}

	configure := func(pc ProviderConfig) provider.Config {
		return provider.Config{
			Credentials: pc.credentials(),
			APIVersion:  pc.APIVersion,
			Endpoints:   pc.endpoints(),
			HTTPClient:  client,
		}
	}

	var adapters []provider.Adapter
	if app.cfg.Facebook.Enabled() {
		adapters = append(adapters, provider.NewFacebook(configure(app.cfg.Facebook)))
	}
	if app.cfg.Google.Enabled() {
		adapters = append(adapters, provider.NewGoogle(configure(app.cfg.Google)))
	}
	if app.cfg.Spotify.Enabled() {
		adapters = append(adapters, provider.NewSpotify(configure(app.cfg.Spotify)))
	}
	if app.cfg.VK.Enabled() {
		adapters = append(adapters, provider.NewVK(configure(app.cfg.VK)))
	}

	app.providers = provider.NewRegistry(adapters...)
	if len(adapters) == 0 {
		app.logger.Warn("no oauth providers configured; sign-in is unavailable")
	}
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = service.NewTokenService(
		app.codec,
		app.tokens,
		app.cfg.AccessTTL(),
		app.cfg.RefreshTTL(),
		app.metrics,
	)

	app.oauthService = &service.OAuthService{
		Providers: app.providers,
		Store:     app.db,
		Tokens:    app.tokenService,
		Metrics:   app.metrics,
	}

	app.accountService = &service.AccountService{
		Providers: app.providers,
		Store:     app.db,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.sweeper,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.tokens,
		app.registry,
		app.logger,
		app.cfg.CORSOrigins...,
	)

	router.TokenService = app.tokenService
	router.OAuthService = app.oauthService
	router.AccountService = app.accountService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
