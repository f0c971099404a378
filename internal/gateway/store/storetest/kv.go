// Package storetest holds a behavioural suite every KV driver must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/store"
	"github.com/stretchr/testify/require"
)

// RunKV exercises the store.KV contract against a fresh driver from newKV.
func RunKV(t *testing.T, newKV func(t *testing.T) store.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		kv := newKV(t)

		_, err := kv.Get(ctx, "mapp_creds:nobody")
		require.ErrorIs(t, err, store.ErrNotFound)

		ok, err := kv.Exists(ctx, "mapp_creds:nobody")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, kv.Del(ctx, "mapp_creds:nobody"), "deleting a missing key is not an error")
	})

	t.Run("set get overwrite delete", func(t *testing.T) {
		kv := newKV(t)

		require.NoError(t, kv.Set(ctx, "mapp_creds:a", []byte("one")))
		got, err := kv.Get(ctx, "mapp_creds:a")
		require.NoError(t, err)
		require.Equal(t, []byte("one"), got)

		require.NoError(t, kv.Set(ctx, "mapp_creds:a", []byte("two")))
		got, err = kv.Get(ctx, "mapp_creds:a")
		require.NoError(t, err)
		require.Equal(t, []byte("two"), got)

		ok, err := kv.Exists(ctx, "mapp_creds:a")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, kv.Del(ctx, "mapp_creds:a"))
		_, err = kv.Get(ctx, "mapp_creds:a")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		kv := newKV(t)

		require.NoError(t, kv.Set(ctx, "mapp_creds:a", []byte("a")))
		require.NoError(t, kv.Set(ctx, "mapp_creds:b", []byte("b")))
		require.NoError(t, kv.Del(ctx, "mapp_creds:a"))

		got, err := kv.Get(ctx, "mapp_creds:b")
		require.NoError(t, err)
		require.Equal(t, []byte("b"), got)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newKV(t).Ping(ctx))
	})
}
