package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// Random value sizes in bytes before encoding.
const (
	// TokenSize256 yields 43 base64url characters. Used for OAuth state.
	TokenSize256 = 32
	// TokenSize512 yields 86 base64url characters. Used for PKCE verifiers.
	TokenSize512 = 64
)

// GenerateToken returns size cryptographically random bytes encoded as
// base64url without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokensEqual compares two opaque tokens in constant time. Empty values never match.
func TokensEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
