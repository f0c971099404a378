package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, h http.HandlerFunc) (*httptest.Server, *Session) {
	t.Helper()
	srv := httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.Client(), srv.URL).Session("tok")
}

func TestSession_Get(t *testing.T) {
	t.Parallel()

	_, s := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "/analytics/api/analysis-query/dimensions", r.URL.Path)
		require.Equal(t, "en", r.URL.Query().Get("language"))
		_, _ = w.Write([]byte(`[{"name":"pages"}]`))
	})

	got, err := s.Get(context.Background(), "/analytics/api/analysis-query/dimensions", url.Values{"language": {"en"}})
	require.NoError(t, err)
	require.Equal(t, []any{map[string]any{"name": "pages"}}, got)
}

func TestSession_ForwardsRequestID(t *testing.T) {
	t.Parallel()

	_, s := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"requestId":"` + r.Header.Get("X-Request-ID") + `"}`))
	})

	// Calls made while serving an inbound request carry its ID.
	var got any
	inbound := slogx.HTTPMiddleware(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		var err error
		got, err = s.Get(r.Context(), "/analytics/api/segments", nil)
		require.NoError(t, err)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/mcp", nil)
	req.Header.Set("X-Request-ID", "req-42")
	inbound.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, map[string]any{"requestId": "req-42"}, got)
}

func TestSession_Post(t *testing.T) {
	t.Parallel()

	_, s := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "x", body["q"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})

	got, err := s.Post(context.Background(), "/analytics/api/analysis-query", map[string]any{"q": "x"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": "1"}, got)
}

func TestSession_EmptyBody(t *testing.T) {
	t.Parallel()

	_, s := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	got, err := s.Get(context.Background(), "/x", nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSession_NonJSON(t *testing.T) {
	t.Parallel()

	_, s := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	_, err := s.Get(context.Background(), "/x", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-JSON")
}

func TestSession_Delete(t *testing.T) {
	t.Parallel()

	_, s := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := s.Delete(context.Background(), "/analytics/api/analysis-query/abc")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"success": true, "status": http.StatusNoContent}, got)
}

func TestSession_APIError(t *testing.T) {
	t.Parallel()

	_, s := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"bad"}`)
	})

	_, err := s.Get(context.Background(), "/analytics/api/segments", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, `GET /analytics/api/segments failed (400): {"message":"bad"}`, err.Error())
	m := outcome.Classify(err)
	require.Equal(t, outcome.UpstreamAPI, m.Code)
	require.Equal(t, "GET /analytics/api/segments failed (400)", m.Message)
	require.Equal(t, err.Error(), m.Detail)
}

func TestSession_NoRedirects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/moved" {
			http.Redirect(w, r, "https://evil.example/steal", http.StatusFound)
			return
		}
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	hc := NewHTTPClient(0)
	hc.Transport = srv.Client().Transport
	s := NewClient(hc, srv.URL).Session("tok")

	_, err := s.Get(context.Background(), "/moved", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusFound, apiErr.Status)
}

func TestSession_GetAbsolute(t *testing.T) {
	t.Parallel()

	srv, s := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analytics/api/result/1", r.URL.Path)
		_, _ = w.Write([]byte(`{"rows":[]}`))
	})

	got, err := s.GetAbsolute(context.Background(), srv.URL+"/analytics/api/result/1")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"rows": []any{}}, got)

	_, err = s.GetAbsolute(context.Background(), "https://attacker.example/analytics/api/result/1")
	require.ErrorIs(t, err, ErrUntrustedURL)
}
