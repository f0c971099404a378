package jwtx

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier validates short-lived tokens signed with a shared secret,
// such as the session token a post-login action hands to the setup endpoint.
type HS256Verifier struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

// NewHS256Verifier creates a verifier for secret. An empty secret rejects everything.
func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret), leeway: DefaultLeeway, now: time.Now}
}

// Verify validates signature and time claims. A missing sub is reported as
// ErrMissingSubject inside the AuthError so callers can word it separately.
func (v *HS256Verifier) Verify(_ context.Context, tokenStr string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, invalid(ErrNotConfigured)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, invalid(mapParseError(err))
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, invalid(ErrMalformed)
	}
	if err := claims.ValidateSubject(); err != nil {
		return nil, invalid(err)
	}
	return claims, nil
}
