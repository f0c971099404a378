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

	httpapi "github.com/aussiebroadwan/mappmcp/internal/gateway/http"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/service"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/store"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/store/drivers/memory"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/store/drivers/redis"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/tools"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/upstream"
	"github.com/aussiebroadwan/mappmcp/pkg/cryptox"
	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// idpTimeout bounds JWKS fetches and code exchanges.
const idpTimeout = 10 * time.Second

// Application encapsulates the gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	kv          store.KV
	credentials *store.Credentials
	verifier    *jwtx.KeySetVerifier
	tokens      *upstream.TokenCache
	baseURL     string

	// Services
	orchestrator        *tools.Orchestrator
	settingsService     *service.SettingsService
	linkService         *service.LinkService
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
			Service: "mappmcp",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	baseURL, err := upstream.ResolveBaseURL(cfg.MappAPIBaseURL)
	if err != nil {
		return nil, err
	}
	app.baseURL = baseURL

	cipher, err := cryptox.NewCredentialCipherFromHex(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid CREDENTIAL_ENCRYPTION_KEY: %w", err)
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}
	app.credentials = store.NewCredentials(app.kv, cipher, app.baseURL)

	app.initAuth()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	if jwtx.NormalizeDomain(app.cfg.Auth0Domain) == "" || app.cfg.Auth0Audience == "" {
		app.logger.Warn("AUTH0_DOMAIN or AUTH0_AUDIENCE not set; all bearer tokens will be rejected")
	} else {
		go app.prefetchKeys()
	}

	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"kv_driver", app.cfg.KVDriver,
		"upstream", app.baseURL,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	// Give outstanding requests, including polling tool calls, a deadline
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.kv.Close(); err != nil {
		app.logger.Error("error closing credential store", "error", err)
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

// Handler exposes the routed HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// initStore opens the configured KV driver and applies any migrations
func (app *Application) initStore() error {
	var (
		kv  store.KV
		err error
	)
	switch app.cfg.KVDriver {
	case DriverSQLite:
		dsn := "file:" + app.cfg.KVDatabaseFile
		kv, err = sqlite.NewStore(dsn)
	case DriverRedis:
		kv, err = redis.NewKV(app.cfg.RedisURL)
	case DriverMemory:
		app.logger.Warn("using in-memory credential store; credentials are lost on restart")
		kv = memory.NewKV()
	default:
		err = fmt.Errorf("unknown KV_DRIVER %q", app.cfg.KVDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	if m, ok := kv.(store.Migrator); ok {
		if err := m.ApplyMigrations(); err != nil {
			_ = kv.Close()
			return fmt.Errorf("failed to apply store migrations: %w", err)
		}
		app.logger.Info("store migrations applied successfully")
	}

	app.kv = kv
	return nil
}

// initAuth builds the bearer token verifier for the configured tenant
func (app *Application) initAuth() {
	app.verifier = jwtx.NewKeySetVerifier(
		app.cfg.Auth0Domain,
		app.cfg.Auth0Audience,
		&http.Client{Timeout: idpTimeout},
	)
}

func (app *Application) prefetchKeys() {
	ctx, cancel := context.WithTimeout(context.Background(), idpTimeout)
	defer cancel()
	if err := app.verifier.Prefetch(ctx); err != nil {
		app.logger.Warn("initial JWKS fetch failed; retrying on demand", "err", err)
		return
	}
	app.logger.Info("identity provider signing keys loaded")
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	upstreamClient := upstream.NewHTTPClient(app.cfg.UpstreamTimeout)

	app.tokens = upstream.NewTokenCache(upstreamClient, upstream.TokenCacheConfig{
		MaxEntries:   app.cfg.TokenCacheMaxEntries,
		SafetyMargin: app.cfg.TokenCacheSafetyMargin,
		DefaultTTL:   app.cfg.TokenDefaultTTL,
	})

	app.orchestrator = tools.NewOrchestrator(
		tools.NewRegistry(),
		app.credentials,
		app.tokens,
		upstream.NewClient(upstreamClient, app.baseURL),
		upstream.Poller{MaxAttempts: app.cfg.PollMaxAttempts, Interval: app.cfg.PollInterval},
	)

	app.settingsService = &service.SettingsService{
		Credentials: app.credentials,
		BaseURL:     app.baseURL,
	}
	if app.cfg.Auth0ActionSecret != "" {
		app.settingsService.SetupVerifier = jwtx.NewHS256Verifier(app.cfg.Auth0ActionSecret)
	}

	app.linkService = service.NewLinkService(service.LinkConfig{
		Domain:       app.cfg.Auth0Domain,
		Audience:     app.cfg.Auth0Audience,
		ClientID:     app.cfg.Auth0SettingsClientID,
		ClientSecret: app.cfg.Auth0SettingsClientSecret,
		HTTPClient:   &http.Client{Timeout: idpTimeout},
	})

	tasks := []service.HousekeepingTask{
		service.PruneTask("token_cache_prune", app.tokens.Prune),
	}
	if cp, ok := app.kv.(store.Checkpointer); ok {
		tasks = append(tasks, service.HousekeepingTask{Name: "kv_checkpoint", Run: func(ctx context.Context, _ time.Time) (int, error) {
			return cp.Checkpoint(ctx)
		}})
	}
	app.housekeepingService = service.NewHousekeepingService(app.logger, app.cfg.HousekeepingInterval, tasks...)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.logger)

	router.PublicBaseURL = app.cfg.PublicBaseURL
	router.Domain = app.cfg.Auth0Domain
	router.KV = app.kv
	router.Keys = app.verifier
	router.Presence = httpapi.ConfigPresence{
		Domain:        jwtx.NormalizeDomain(app.cfg.Auth0Domain) != "",
		Audience:      app.cfg.Auth0Audience != "",
		EncryptionKey: app.cfg.EncryptionKey != "",
		KVStore:       app.kv != nil,
	}

	// Wire services to router
	router.SettingsService = app.settingsService
	router.LinkService = app.linkService
	router.MCP = tools.NewHTTPHandler(
		tools.NewMCPServer(app.orchestrator, tools.VariantMCP, BuildVersion),
		httpapi.MCPPath,
	)
	router.ChatGPTMCP = tools.NewHTTPHandler(
		tools.NewMCPServer(app.orchestrator, tools.VariantChatGPT, BuildVersion),
		httpapi.ChatGPTMCPPath,
	)
	router.ApplyRoutes()

	app.router = router

	// Tool calls poll the upstream for minutes, so no write timeout
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
