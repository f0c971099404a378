package jwtx_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signHS(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestHS256Verifier(t *testing.T) {
	t.Parallel()

	const secret = "action-secret"
	v := jwtx.NewHS256Verifier(secret)
	ctx := context.Background()
	exp := jwt.NewNumericDate(time.Now().Add(time.Minute))

	t.Run("valid", func(t *testing.T) {
		claims, err := v.Verify(ctx, signHS(t, secret, jwt.RegisteredClaims{Subject: "auth0|u", ExpiresAt: exp}))
		require.NoError(t, err)
		require.Equal(t, "auth0|u", claims.Subject)
	})

	t.Run("missing sub", func(t *testing.T) {
		_, err := v.Verify(ctx, signHS(t, secret, jwt.RegisteredClaims{ExpiresAt: exp}))
		require.ErrorIs(t, err, jwtx.ErrAuthInvalid)
		require.ErrorIs(t, err, jwtx.ErrMissingSubject)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Verify(ctx, signHS(t, "other", jwt.RegisteredClaims{Subject: "auth0|u", ExpiresAt: exp}))
		require.ErrorIs(t, err, jwtx.ErrAuthInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		past := jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(ctx, signHS(t, secret, jwt.RegisteredClaims{Subject: "auth0|u", ExpiresAt: past}))
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("no secret configured", func(t *testing.T) {
		_, err := jwtx.NewHS256Verifier("").Verify(ctx, signHS(t, secret, jwt.RegisteredClaims{Subject: "auth0|u"}))
		require.ErrorIs(t, err, jwtx.ErrNotConfigured)
	})
}
