package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/store"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/store/drivers/memory"
	"github.com/aussiebroadwan/mappmcp/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newCredentials(t *testing.T) (*store.Credentials, *memory.KV, *cryptox.CredentialCipher) {
	t.Helper()
	c, err := cryptox.NewCredentialCipherFromHex(testKey)
	require.NoError(t, err)
	kv := memory.NewKV()
	return store.NewCredentials(kv, c, domain.SupportedBaseURL), kv, c
}

func TestCredentials_SaveLoadDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	creds, kv, _ := newCredentials(t)
	id := domain.Identity("auth0|alice")

	got, err := creds.Load(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)

	err = creds.Save(ctx, id, domain.UpstreamCredential{
		ClientID:     "client-abc",
		ClientSecret: "secret-xyz",
		BaseURL:      "https://ignored.example.com",
	})
	require.NoError(t, err)

	// Stored under the prefixed key, never in plaintext.
	raw, err := kv.Get(ctx, "mapp_creds:auth0|alice")
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-xyz")
	require.NotContains(t, string(raw), "client-abc")

	ok, err := creds.Exists(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = creds.Load(ctx, id)
	require.NoError(t, err)
	require.Equal(t, &domain.UpstreamCredential{
		ClientID:     "client-abc",
		ClientSecret: "secret-xyz",
		BaseURL:      domain.SupportedBaseURL,
	}, got)

	require.NoError(t, creds.Delete(ctx, id))
	got, err = creds.Load(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCredentials_LastWriterWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	creds, _, _ := newCredentials(t)
	id := domain.Identity("auth0|bob")

	require.NoError(t, creds.Save(ctx, id, domain.UpstreamCredential{ClientID: "first-id", ClientSecret: "one"}))
	require.NoError(t, creds.Save(ctx, id, domain.UpstreamCredential{ClientID: "second-id", ClientSecret: "two"}))

	got, err := creds.Load(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "second-id", got.ClientID)
	require.Equal(t, "two", got.ClientSecret)
}

func TestCredentials_UnreadableRecordsLoadAsNil(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	creds, kv, cipher := newCredentials(t)

	otherCipher, err := cryptox.NewCredentialCipherFromHex(strings.Repeat("ff", 32))
	require.NoError(t, err)
	foreign, err := otherCipher.Encrypt([]byte(`{"clientId":"a","clientSecret":"b"}`))
	require.NoError(t, err)

	badShape, err := cipher.Encrypt([]byte(`["not","an","object"]`))
	require.NoError(t, err)
	missingSecret, err := cipher.Encrypt([]byte(`{"clientId":"only-id"}`))
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not-an-envelope"},
		{"wrong key", foreign},
		{"not an object", badShape},
		{"missing secret", missingSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := domain.Identity("auth0|" + tt.name)
			require.NoError(t, kv.Set(ctx, store.CredentialKey(id), []byte(tt.value)))

			got, err := creds.Load(ctx, id)
			require.NoError(t, err)
			require.Nil(t, got)

			// Exists never decrypts, so the broken record still counts as present.
			ok, err := creds.Exists(ctx, id)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestCredentials_RequiresIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	creds, _, _ := newCredentials(t)

	require.ErrorIs(t, creds.Save(ctx, "", domain.UpstreamCredential{}), store.ErrNoIdentity)
	_, err := creds.Load(ctx, "")
	require.ErrorIs(t, err, store.ErrNoIdentity)
	require.ErrorIs(t, creds.Delete(ctx, ""), store.ErrNoIdentity)
	_, err = creds.Exists(ctx, "")
	require.ErrorIs(t, err, store.ErrNoIdentity)
}

type brokenKV struct{ store.KV }

func (brokenKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection reset")
}

func TestCredentials_KVErrorsPropagate(t *testing.T) {
	t.Parallel()
	c, err := cryptox.NewCredentialCipherFromHex(testKey)
	require.NoError(t, err)
	creds := store.NewCredentials(brokenKV{memory.NewKV()}, c, domain.SupportedBaseURL)

	_, err = creds.Load(context.Background(), "auth0|x")
	require.ErrorContains(t, err, "connection reset")
}
