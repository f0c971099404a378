package jwtx_test

import (
	"testing"

	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "https://tenant.example.com/",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("https://tenant.example.com/"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("trailing slash matters", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("https://tenant.example.com"), jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: []string{"https://mcp.example.com", "https://tenant.example.com/userinfo"},
		},
	}

	t.Run("contains match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"https://mcp.example.com"}))
	})

	t.Run("no expectation", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience(nil))
	})

	t.Run("no match", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateAudience([]string{"other"}), jwtx.ErrAudience)
	})
}

func TestValidateSubject(t *testing.T) {
	require.NoError(t, (&jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "auth0|1"}}).ValidateSubject())
	require.ErrorIs(t, (&jwtx.Claims{}).ValidateSubject(), jwtx.ErrMissingSubject)
	require.ErrorIs(t, (&jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "  "}}).ValidateSubject(), jwtx.ErrMissingSubject)
}
