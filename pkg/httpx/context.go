package httpx

import (
	"context"

	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyIdentity ctxKey = "identity"
	CtxKeyClaims   ctxKey = "claims"
)

// WithIdentity stores the verified subject in ctx.
func WithIdentity(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, CtxKeyIdentity, sub)
}

// IdentityFromContext returns the verified subject, if any.
func IdentityFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(CtxKeyIdentity).(string)
	return sub, ok && sub != ""
}

// ClaimsFromContext returns the full verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(*jwtx.Claims)
	return c, ok
}

func contextWithAuth(ctx context.Context, c *jwtx.Claims) context.Context {
	ctx = WithIdentity(ctx, c.Subject)
	return context.WithValue(ctx, CtxKeyClaims, c)
}
