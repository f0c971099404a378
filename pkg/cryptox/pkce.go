package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PKCEMethodS256 is the only code challenge method issued.
const PKCEMethodS256 = "S256"

// PKCE holds a code verifier and its derived S256 challenge (RFC 7636).
type PKCE struct {
	Verifier  string
	Challenge string
	Method    string
}

// GeneratePKCE creates a verifier from 64 random bytes and its S256 challenge.
func GeneratePKCE() (PKCE, error) {
	verifier, err := GenerateToken(TokenSize512)
	if err != nil {
		return PKCE{}, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}

	return PKCE{
		Verifier:  verifier,
		Challenge: S256Challenge(verifier),
		Method:    PKCEMethodS256,
	}, nil
}

// S256Challenge returns BASE64URL(SHA256(verifier)).
func S256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
