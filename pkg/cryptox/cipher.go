package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CredentialKeySize is the AES-256 key length in bytes.
const CredentialKeySize = 32

var (
	// ErrKeyMissing is returned when no encryption key is configured.
	ErrKeyMissing = errors.New("cryptox: encryption key is not set")
	// ErrKeyMalformed is returned when the key is not 64 hex characters.
	ErrKeyMalformed = errors.New("cryptox: encryption key must be 64 hex characters (32 bytes)")
	// ErrIntegrity is returned for any envelope that fails to decode or authenticate.
	ErrIntegrity = errors.New("cryptox: envelope integrity check failed")
)

// CredentialCipher seals small secrets into a self-contained envelope:
// base64(nonce[12] || ciphertext || tag[16]) using AES-256-GCM.
type CredentialCipher struct {
	aead cipher.AEAD
	rand io.Reader
}

// NewCredentialCipher creates a cipher from a raw 32-byte key.
func NewCredentialCipher(key []byte) (*CredentialCipher, error) {
	if len(key) != CredentialKeySize {
		return nil, ErrKeyMalformed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &CredentialCipher{aead: gcm, rand: rand.Reader}, nil
}

// NewCredentialCipherFromHex parses a 64 character hex key.
func NewCredentialCipherFromHex(hexKey string) (*CredentialCipher, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, ErrKeyMissing
	}
	if len(hexKey) != CredentialKeySize*2 {
		return nil, ErrKeyMalformed
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrKeyMalformed
	}
	return NewCredentialCipher(key)
}

// WithRandom swaps the nonce source. Intended for tests.
func (c *CredentialCipher) WithRandom(r io.Reader) *CredentialCipher {
	return &CredentialCipher{aead: c.aead, rand: r}
}

// Encrypt seals plaintext under a fresh random nonce. It fails closed if the
// random source cannot supply a nonce.
func (c *CredentialCipher) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends ciphertext||tag to the nonce.
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. Every failure mode is
// reported as ErrIntegrity.
func (c *CredentialCipher) Decrypt(envelope string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrIntegrity)
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return plaintext, nil
}

// GenerateHexKey returns a fresh random key in the format NewCredentialCipherFromHex accepts.
func GenerateHexKey() (string, error) {
	key := make([]byte, CredentialKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
