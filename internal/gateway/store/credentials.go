package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

// CredentialKeyPrefix namespaces credential records in the KV.
const CredentialKeyPrefix = "mapp_creds:"

// Cipher seals and opens credential payloads.
type Cipher interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(envelope string) ([]byte, error)
}

// Credentials persists each identity's upstream credentials encrypted at rest.
type Credentials struct {
	kv      KV
	cipher  Cipher
	baseURL string
}

// storedCredential is the plaintext JSON shape sealed into the envelope. The
// base URL is deliberately absent; it is always the configured endpoint.
type storedCredential struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// NewCredentials creates a credential store. baseURL is stamped onto every
// loaded record.
func NewCredentials(kv KV, cipher Cipher, baseURL string) *Credentials {
	return &Credentials{kv: kv, cipher: cipher, baseURL: baseURL}
}

// CredentialKey returns the KV key for an identity.
func CredentialKey(id domain.Identity) string {
	return CredentialKeyPrefix + string(id)
}

// Save encrypts and writes the credential, replacing any previous record.
// Concurrent saves for one identity are last-writer-wins.
func (s *Credentials) Save(ctx context.Context, id domain.Identity, cred domain.UpstreamCredential) error {
	if id == "" {
		return ErrNoIdentity
	}

	payload, err := json.Marshal(storedCredential{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
	})
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	envelope, err := s.cipher.Encrypt(payload)
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}

	if err := s.kv.Set(ctx, CredentialKey(id), []byte(envelope)); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Load returns the identity's credential, or nil when none is stored or the
// stored envelope cannot be opened. KV failures are returned as errors.
func (s *Credentials) Load(ctx context.Context, id domain.Identity) (*domain.UpstreamCredential, error) {
	if id == "" {
		return nil, ErrNoIdentity
	}

	raw, err := s.kv.Get(ctx, CredentialKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}

	log := slogx.FromContext(ctx)

	plaintext, err := s.cipher.Decrypt(string(raw))
	if err != nil {
		// Unreadable envelopes (rotated key, tampering) look like "not configured".
		log.Warn("stored credential could not be decrypted", "identity", id, "err", err)
		return nil, nil
	}

	var stored storedCredential
	if err := json.Unmarshal(plaintext, &stored); err != nil || stored.ClientID == "" || stored.ClientSecret == "" {
		log.Warn("stored credential has an invalid shape", "identity", id)
		return nil, nil
	}

	return &domain.UpstreamCredential{
		ClientID:     stored.ClientID,
		ClientSecret: stored.ClientSecret,
		BaseURL:      s.baseURL,
	}, nil
}

// Delete removes the identity's credential.
func (s *Credentials) Delete(ctx context.Context, id domain.Identity) error {
	if id == "" {
		return ErrNoIdentity
	}
	if err := s.kv.Del(ctx, CredentialKey(id)); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Exists reports whether a record is stored, without decrypting it.
func (s *Credentials) Exists(ctx context.Context, id domain.Identity) (bool, error) {
	if id == "" {
		return false, ErrNoIdentity
	}
	ok, err := s.kv.Exists(ctx, CredentialKey(id))
	if err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return ok, nil
}

// Ping checks the backing KV.
func (s *Credentials) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
