package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/upstream"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
)

const testIdentity = "auth0|alice"

type fakeCreds struct {
	cred  *domain.UpstreamCredential
	err   error
	calls atomic.Int32
}

func (f *fakeCreds) Load(_ context.Context, id domain.Identity) (*domain.UpstreamCredential, error) {
	f.calls.Add(1)
	if id != testIdentity {
		return nil, nil
	}
	return f.cred, f.err
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) GetToken(context.Context, domain.UpstreamCredential) (string, error) {
	return f.token, f.err
}

type harness struct {
	srv   *httptest.Server
	creds *fakeCreds
	toks  *fakeTokens
	orch  *Orchestrator
}

func newHarness(t *testing.T, mux *http.ServeMux) *harness {
	t.Helper()
	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)

	h := &harness{
		srv:   srv,
		creds: &fakeCreds{cred: &domain.UpstreamCredential{ClientID: "client-abc", ClientSecret: "s", BaseURL: srv.URL}},
		toks:  &fakeTokens{token: "upstream-token"},
	}
	h.orch = NewOrchestrator(NewRegistry(), h.creds, h.toks,
		upstream.NewClient(srv.Client(), srv.URL),
		upstream.Poller{MaxAttempts: 3, Interval: time.Millisecond},
	)
	return h
}

func authed() context.Context {
	return httpx.WithIdentity(context.Background(), testIdentity)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

var errKV = errors.New("kv unavailable")
