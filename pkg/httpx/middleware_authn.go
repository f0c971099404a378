package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

const (
	DescMissingBearer = "Missing or invalid Authorization header"
	DescInvalidToken  = "Invalid or expired token"
)

type authnConfig struct {
	resourceMetadata func(*http.Request) string
}

// AuthnOption customises AuthnMiddleware.
type AuthnOption func(*authnConfig)

// WithResourceMetadata advertises the protected resource metadata URL
// (RFC 9728) in the bearer challenge so clients can discover the issuer.
func WithResourceMetadata(fn func(*http.Request) string) AuthnOption {
	return func(c *authnConfig) { c.resourceMetadata = fn }
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthnMiddleware verifies the bearer token and injects the identity and
// claims into the request context. Rejections never reveal why the token
// was refused; the reason is logged instead.
func AuthnMiddleware(v jwtx.Verifier, opts ...AuthnOption) Middleware {
	cfg := authnConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, r, cfg, DescMissingBearer)
				return
			}

			claims, err := v.Verify(ctx, raw)
			if err != nil {
				var authErr *jwtx.AuthError
				if errors.As(err, &authErr) {
					log.Warn("jwt verify failed", "reason", authErr.Reason)
				} else {
					log.Warn("jwt verify failed", "err", err)
				}
				writeBearerError(w, r, cfg, DescInvalidToken)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			log = log.With("sub", claims.Subject)
			if claims.AZP != "" {
				log = log.With("azp", claims.AZP)
			}
			ctx = slogx.WithContext(ctx, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, r *http.Request, cfg authnConfig, desc string) {
	challenge := `Bearer error="invalid_token", error_description="` + desc + `"`
	if cfg.resourceMetadata != nil {
		if u := cfg.resourceMetadata(r); u != "" {
			challenge += `, resource_metadata="` + u + `"`
		}
	}
	w.Header().Set("WWW-Authenticate", challenge)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
