package jwtx

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySetVerifier validates provider-issued access tokens against a remote
// JWKS, a fixed issuer and a required audience.
type KeySetVerifier struct {
	keys     KeyResolver
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NormalizeDomain strips an optional scheme and trailing slash from a tenant domain.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	return strings.TrimSuffix(domain, "/")
}

// IssuerForDomain returns the issuer string tokens from domain must carry.
func IssuerForDomain(domain string) string {
	return "https://" + NormalizeDomain(domain) + "/"
}

// JWKSURLForDomain returns the well-known JWKS location for domain.
func JWKSURLForDomain(domain string) string {
	return "https://" + NormalizeDomain(domain) + "/.well-known/jwks.json"
}

// NewKeySetVerifier creates a verifier for the given tenant domain and
// audience. Keys are fetched on first use. An empty domain or audience yields
// a verifier that rejects every token.
func NewKeySetVerifier(domain, audience string, client *http.Client) *KeySetVerifier {
	var keys KeyResolver
	if NormalizeDomain(domain) != "" {
		keys = NewRemoteKeySet(JWKSURLForDomain(domain), client)
	}
	return NewKeySetVerifierWithKeys(keys, IssuerForDomain(domain), audience)
}

// NewKeySetVerifierWithKeys builds a verifier around an explicit key source.
func NewKeySetVerifierWithKeys(keys KeyResolver, issuer, audience string) *KeySetVerifier {
	return &KeySetVerifier{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		leeway:   DefaultLeeway,
		now:      time.Now,
	}
}

// Prefetch loads signing keys ahead of the first request. It is a no-op for
// key sources that cannot be fetched.
func (v *KeySetVerifier) Prefetch(ctx context.Context) error {
	p, ok := v.keys.(interface{ Prefetch(context.Context) error })
	if !ok {
		return nil
	}
	return p.Prefetch(ctx)
}

// Ready reports whether signing keys have been loaded.
func (v *KeySetVerifier) Ready() bool {
	r, ok := v.keys.(interface{ Ready() bool })
	return ok && r.Ready()
}

// Verify validates the token and returns its claims. Every failure is an
// *AuthError matching ErrAuthInvalid.
func (v *KeySetVerifier) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	if v.keys == nil || v.audience == "" || v.issuer == "https:///" {
		return nil, invalid(ErrNotConfigured)
	}
	if tokenStr == "" {
		return nil, invalid(ErrMalformed)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrMissingKID
		}

		pub, err := v.keys.Key(ctx, kid)
		if err != nil {
			return nil, err
		}

		// The key type must agree with the algorithm the token claims.
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if k, ok := pub.(*rsa.PublicKey); ok {
				return k, nil
			}
		case *jwt.SigningMethodECDSA:
			if k, ok := pub.(*ecdsa.PublicKey); ok {
				return k, nil
			}
		}
		return nil, ErrKeyType
	})
	if err != nil {
		return nil, invalid(mapParseError(err))
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, invalid(ErrMalformed)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, invalid(err)
	}
	if err := claims.ValidateAudience([]string{v.audience}); err != nil {
		return nil, invalid(err)
	}
	if err := claims.ValidateSubject(); err != nil {
		return nil, invalid(err)
	}

	return claims, nil
}

// mapParseError translates library errors into package sentinels while
// keeping the original chain for logs.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %w", ErrNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	default:
		return fmt.Errorf("jwtx: parse or verify: %w", err)
	}
}
