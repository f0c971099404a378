package http

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/store/drivers/memory"
	"github.com/aussiebroadwan/mappmcp/pkg/gatewaysdk"
	"github.com/stretchr/testify/require"
)

func TestRouter_Livez(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/livez", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[gatewaysdk.HealthResponse](t, rec)
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "test", resp.Version)
	require.Nil(t, resp.Checks)
}

func TestRouter_Readyz(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		rec := h.do(http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, &gatewaysdk.HealthChecks{KVStore: "ok", Keys: "ok"}, decode[gatewaysdk.HealthResponse](t, rec).Checks)
		require.Zero(t, h.keys.prefetches.Load())
	})

	t.Run("keys load on demand", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.keys.ready.Store(false)

		rec := h.do(http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.EqualValues(t, 1, h.keys.prefetches.Load())
	})

	t.Run("keys unavailable", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.keys.ready.Store(false)
		h.keys.prefetchErr = errors.New("jwks down")

		rec := h.do(http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		resp := decode[gatewaysdk.HealthResponse](t, rec)
		require.Equal(t, "degraded", resp.Status)
		require.Equal(t, "error: no keys loaded", resp.Checks.Keys)
		require.Equal(t, "ok", resp.Checks.KVStore)
	})

	t.Run("store unreachable", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, withPinger(failingKV{memory.NewKV()}))

		rec := h.do(http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "error: connection refused", decode[gatewaysdk.HealthResponse](t, rec).Checks.KVStore)
	})
}

func TestRouter_ConfigHealth(t *testing.T) {
	t.Parallel()

	t.Run("complete", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		rec := h.do(http.MethodGet, "/api/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[gatewaysdk.ConfigHealthResponse](t, rec)
		require.Equal(t, "ok", resp.Status)
		require.Equal(t, "configured", resp.Auth0Domain)
		require.Equal(t, "configured", resp.KVStore)
		_, err := time.Parse(time.RFC3339Nano, resp.Timestamp)
		require.NoError(t, err)
	})

	t.Run("missing settings", func(t *testing.T) {
		t.Parallel()

		rec := recordHandler(ConfigHealthHandler(ConfigPresence{Audience: true, EncryptionKey: true, KVStore: true}))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		resp := decode[gatewaysdk.ConfigHealthResponse](t, rec)
		require.Equal(t, "degraded", resp.Status)
		require.Equal(t, "missing", resp.Auth0Domain)
		require.Equal(t, "configured", resp.Auth0Audience)
	})
}
