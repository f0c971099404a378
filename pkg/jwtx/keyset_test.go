package jwtx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeySet_ResetFromJWKS(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.False(t, ks.IsReady())

	err = ks.ResetFromJWKS(JWKS{Keys: []JWK{
		NewRSAJWK("rsa-1", "sig", "RS256", &rsaKey.PublicKey),
		NewES256JWK("ec-1", "sig", "ES256", &ecKey.PublicKey),
		{Kty: "RSA", Use: "enc", Kid: "enc-1", N: "AQAB", E: "AQAB"},
		{Kty: "OKP", Crv: "Ed25519", Kid: "okp-1"},
	}})
	require.NoError(t, err)
	require.True(t, ks.IsReady())

	got, err := ks.Get("rsa-1")
	require.NoError(t, err)
	require.Equal(t, rsaKey.PublicKey.N, got.(*rsa.PublicKey).N)

	got, err = ks.Get("ec-1")
	require.NoError(t, err)
	require.Equal(t, ecKey.PublicKey.X, got.(*ecdsa.PublicKey).X)

	_, err = ks.Get("enc-1")
	require.ErrorIs(t, err, ErrNoKey)
	_, err = ks.Get("okp-1")
	require.ErrorIs(t, err, ErrNoKey)
}

func TestKeySet_ResetFromJWKSRejectsEmpty(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks := NewKeySet()
	require.NoError(t, ks.AddJWK(NewRSAJWK("keep", "sig", "RS256", &rsaKey.PublicKey)))

	err = ks.ResetFromJWKS(JWKS{Keys: []JWK{{Kty: "oct", Kid: "x"}}})
	require.ErrorIs(t, err, ErrEmptyJWKS)

	_, err = ks.Get("keep")
	require.NoError(t, err, "failed reset must keep previous keys")
}

func TestParseJWKToKey_Errors(t *testing.T) {
	tests := []struct {
		name string
		jwk  JWK
	}{
		{"unsupported kty", JWK{Kty: "oct"}},
		{"bad modulus", JWK{Kty: "RSA", N: "!!", E: "AQAB"}},
		{"empty rsa", JWK{Kty: "RSA"}},
		{"unsupported curve", JWK{Kty: "EC", Crv: "P-384"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseJWKToKey(tt.jwk)
			require.Error(t, err)
		})
	}
}
