package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket refilled at RequestsPerWindow per Window.
type RateLimitConfig struct {
	// Profile names the limit in logs and rejection hooks.
	Profile           string
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Profiles shared by the gateway's routes. Each can be overridden at process
// start with RATELIMIT_<PROFILE>_REQUESTS, _WINDOW_SEC and _BURST.
var (
	// StrictLimit guards unauthenticated writes (setup).
	StrictLimit = RateLimitConfig{Profile: "strict", RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards the linking flow and credential changes.
	ModerateLimit = RateLimitConfig{Profile: "moderate", RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards tool calls and probes.
	LenientLimit = RateLimitConfig{Profile: "lenient", RequestsPerWindow: 100, Window: time.Minute, Burst: 100}

	// PublicLimit guards anonymous read-only documents.
	PublicLimit = RateLimitConfig{Profile: "public", RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
	PublicLimit = ParseRateLimitFromEnv("PUBLIC", PublicLimit)
}

type rateLimitEnv struct {
	Requests  int `env:"REQUESTS"`
	WindowSec int `env:"WINDOW_SEC"`
	Burst     int `env:"BURST"`
}

// ParseRateLimitFromEnv applies RATELIMIT_<prefix>_* overrides to def.
// Non-positive values are ignored; a malformed value discards every
// override for the profile.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	var o rateLimitEnv
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "RATELIMIT_" + prefix + "_"}); err != nil {
		return def
	}

	cfg := def
	if o.Requests > 0 {
		cfg.RequestsPerWindow = o.Requests
	}
	if o.WindowSec > 0 {
		cfg.Window = time.Duration(o.WindowSec) * time.Second
	}
	if o.Burst > 0 {
		cfg.Burst = o.Burst
	}
	return cfg
}

// KeyExtractor groups requests that share a bucket. An empty key exempts
// the request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the first X-Forwarded-For hop, then X-Real-IP,
// then the connection's remote host.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// IdentityKeyExtractor returns the subject AuthnMiddleware stored in the
// context, or "" for anonymous requests.
func IdentityKeyExtractor(r *http.Request) string {
	id, _ := IdentityFromContext(r.Context())
	return id
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep,
// e.g. "auth0|abc:192.168.1.1".
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// RateLimitOption customises RateLimitMiddleware.
type RateLimitOption func(*rateLimitOptions)

type rateLimitOptions struct {
	onReject func(*http.Request, RateLimitConfig)
	idleTTL  time.Duration
}

// OnRateLimited registers fn to run for every rejected request.
func OnRateLimited(fn func(*http.Request, RateLimitConfig)) RateLimitOption {
	return func(o *rateLimitOptions) { o.onReject = fn }
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets holds one limiter per key. Keys idle for longer than ttl are
// dropped on the next sweep.
type buckets struct {
	mu        sync.Mutex
	byKey     map[string]*bucket
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.ttl {
		for k, e := range b.byKey {
			if now.Sub(e.lastSeen) >= b.ttl {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}

	e, ok := b.byKey[key]
	if !ok {
		e = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.byKey[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimitMiddleware rejects requests with 429 once the bucket for their
// key is empty.
func RateLimitMiddleware(cfg RateLimitConfig, key KeyExtractor, opts ...RateLimitOption) Middleware {
	o := rateLimitOptions{idleTTL: 5 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	store := &buckets{
		byKey:     make(map[string]*bucket),
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		ttl:       max(o.idleTTL, cfg.Window),
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, skipping", "profile", cfg.Profile)
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			limiter := store.get(k, now)
			if limiter.AllowN(now, 1) {
				next.ServeHTTP(w, r)
				return
			}

			// Time until one token is back, rounded up to whole seconds.
			wait := time.Duration(float64(time.Second) * (1 - limiter.TokensAt(now)) / float64(limiter.Limit()))
			retryAfter := max(int((wait+time.Second-1)/time.Second), 1)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"profile", cfg.Profile,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			if o.onReject != nil {
				o.onReject(r, cfg)
			}

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP keys buckets on the client address.
func RateLimitByIP(cfg RateLimitConfig, opts ...RateLimitOption) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor, opts...)
}

// RateLimitByIdentity keys buckets on subject and client address. Mount it
// after AuthnMiddleware.
func RateLimitByIdentity(cfg RateLimitConfig, opts ...RateLimitOption) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", IdentityKeyExtractor, IPKeyExtractor), opts...)
}
