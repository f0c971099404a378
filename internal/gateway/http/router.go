package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/metrics"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/service"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/mappmcp/api/mappmcp" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	MCPPath        = "/api/mcp"
	ChatGPTMCPPath = "/api/mcp-chatgpt"

	ResourceMetadataPath = "/.well-known/oauth-protected-resource"
)

// Pinger reports whether the credential KV store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeyReadiness reports whether the provider's signing keys are loaded.
type KeyReadiness interface {
	Ready() bool
	Prefetch(ctx context.Context) error
}

// ConfigPresence lists which deployment settings are set, for /api/health.
type ConfigPresence struct {
	Domain        bool
	Audience      bool
	EncryptionKey bool
	KVStore       bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// PublicBaseURL overrides the request origin when building callback and
	// metadata URLs behind a proxy.
	PublicBaseURL string
	Domain        string

	KV       Pinger
	Keys     KeyReadiness
	Presence ConfigPresence

	SettingsService *service.SettingsService
	LinkService     *service.LinkService

	// MCP and ChatGPTMCP serve the two MCP variants. Either may be nil.
	MCP        http.Handler
	ChatGPTMCP http.Handler
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSettings()
	r.registerSetup()
	r.registerLinking()
	r.registerMCP()
	r.registerDiscovery()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Mapp Intelligence MCP Gateway API
//	@version		0.1.0
//	@description	MCP gateway exposing the Mapp Intelligence analytics API as tools.
//	@description
//	@description				Users link their own Mapp API credentials through the settings API. MCP endpoints require an access token from the configured identity provider.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/mappmcp
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
//	@description				Identity provider access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// baseURL is the externally visible origin of the service.
func (r *Router) baseURL(req *http.Request) string {
	if r.PublicBaseURL != "" {
		return strings.TrimSuffix(r.PublicBaseURL, "/")
	}
	return httpx.Origin(req)
}

func (r *Router) resourceMetadataURL(req *http.Request) string {
	return r.baseURL(req) + ResourceMetadataPath
}

// authn verifies bearer tokens and advertises the resource metadata on 401s.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, httpx.WithResourceMetadata(r.resourceMetadataURL))
}

func (r *Router) limitByIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitByIP(cfg, httpx.OnRateLimited(countRateLimited))
}

func (r *Router) limitByIdentity(cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimitByIdentity(cfg, httpx.OnRateLimited(countRateLimited))
}

func countRateLimited(_ *http.Request, cfg httpx.RateLimitConfig) {
	metrics.RateLimitedTotal.WithLabelValues(cfg.Profile).Inc()
}

func (r *Router) registerSettings() {
	h := &SettingsHandler{SettingsService: r.SettingsService}

	// Reads are cheap; writes re-encrypt and hit the store
	r.Mux.Handle("GET /api/settings",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			r.limitByIdentity(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/settings",
		httpx.Chain(http.HandlerFunc(h.HandlePost),
			r.authn(),
			r.limitByIdentity(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/settings",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authn(),
			r.limitByIdentity(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSetup() {
	// POST /api/setup - strict rate limit by IP (unauthenticated write)
	h := &SetupHandler{SettingsService: r.SettingsService}
	r.Mux.Handle("POST /api/setup",
		httpx.Chain(h,
			r.limitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerLinking() {
	h := &LinkHandler{LinkService: r.LinkService, baseURL: r.baseURL}

	r.Mux.Handle("GET /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.limitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET "+service.CallbackPath,
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			r.limitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMCP() {
	// Streamable HTTP uses POST for messages, GET for the event stream and
	// DELETE to end a session, so the method is left to the MCP handler.
	endpoints := []struct {
		path string
		h    http.Handler
	}{
		{MCPPath, r.MCP},
		{ChatGPTMCPPath, r.ChatGPTMCP},
	}
	for _, e := range endpoints {
		if e.h == nil {
			continue
		}
		r.Mux.Handle(e.path,
			httpx.Chain(e.h,
				r.authn(),
				r.limitByIdentity(httpx.LenientLimit),
			),
		)
	}
}

func (r *Router) registerDiscovery() {
	r.Mux.Handle("GET "+ResourceMetadataPath,
		httpx.Chain(ProtectedResourceHandler(r.Domain, r.baseURL),
			r.limitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("OPTIONS "+ResourceMetadataPath, http.HandlerFunc(metadataPreflight))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.KV, r.Keys),
			r.limitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/health",
		httpx.Chain(ConfigHealthHandler(r.Presence),
			r.limitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
