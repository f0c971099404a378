// Package tools implements the analytics tools exposed over MCP and the
// orchestration that runs them on behalf of an authenticated identity.
package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/metrics"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/upstream"
	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
	"github.com/aussiebroadwan/mappmcp/pkg/idx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

const (
	msgAuthRequired       = "Authentication required. Please connect via OAuth first."
	msgCredentialsMissing = "Mapp Intelligence credentials not configured. Please save your Mapp client_id and client_secret via the settings endpoint first."
	msgUpstreamAuth       = "Mapp authentication failed"
)

// CredentialLoader resolves an identity's upstream credential.
type CredentialLoader interface {
	Load(ctx context.Context, id domain.Identity) (*domain.UpstreamCredential, error)
}

// TokenSource yields upstream access tokens.
type TokenSource interface {
	GetToken(ctx context.Context, cred domain.UpstreamCredential) (string, error)
}

// Result is a successful invocation.
type Result struct {
	Tool    *Descriptor
	Data    any
	Outcome outcome.Code
}

// Orchestrator runs tools: it resolves the caller's credentials, obtains an
// upstream token and performs the tool's operation. Every failure it returns
// is an *outcome.Error.
type Orchestrator struct {
	registry    *Registry
	credentials CredentialLoader
	tokens      TokenSource
	client      *upstream.Client
	poller      upstream.Poller
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(reg *Registry, creds CredentialLoader, tokens TokenSource, client *upstream.Client, poller upstream.Poller) *Orchestrator {
	return &Orchestrator{registry: reg, credentials: creds, tokens: tokens, client: client, poller: poller}
}

// Registry returns the tools this orchestrator can run.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Invoke runs the named tool with args for the identity carried by ctx.
func (o *Orchestrator) Invoke(ctx context.Context, name string, args Args) (Result, error) {
	start := time.Now()
	ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("invocation_id", idx.NewAt(start).String()))

	desc, ok := o.registry.Lookup(name)
	var (
		data any
		err  error
	)
	if ok {
		data, err = o.run(ctx, desc, args)
	} else {
		err = outcome.Errorf(outcome.Internal, "Unknown tool: %s", name)
	}

	if err != nil {
		m := outcome.Classify(err)
		o.record(ctx, name, ok, start, m.Code, m.Detail, true)
		return Result{}, &outcome.Error{Code: m.Code, Message: m.Message, Err: err}
	}

	code := outcome.DeriveSuccess(name, data)
	o.record(ctx, name, ok, start, code, "", false)
	return Result{Tool: desc, Data: data, Outcome: code}, nil
}

func (o *Orchestrator) run(ctx context.Context, desc *Descriptor, args Args) (any, error) {
	sub, _ := httpx.IdentityFromContext(ctx)
	if sub == "" {
		return nil, outcome.Errorf(outcome.AuthRequired, msgAuthRequired)
	}
	id := domain.Identity(sub)

	do, err := desc.Op.prepare(args)
	if err != nil {
		return nil, err
	}

	cred, err := o.credentials.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, outcome.Errorf(outcome.CredentialsMissing, msgCredentialsMissing)
	}

	token, err := o.tokens.GetToken(ctx, *cred)
	if err != nil {
		msg := msgUpstreamAuth
		if m := outcome.Classify(err); m.Code == outcome.UpstreamAuth {
			msg = m.Message
		}
		return nil, &outcome.Error{Code: outcome.UpstreamAuth, Message: msg, Err: err}
	}

	return do(ctx, &env{session: o.client.Session(token), poller: o.poller})
}

// record logs and counts one invocation. detail is the full failure text and
// is only written to the log.
func (o *Orchestrator) record(ctx context.Context, name string, known bool, start time.Time, code outcome.Code, detail string, failed bool) {
	elapsed := time.Since(start)

	label := name
	if !known {
		label = "unknown"
	}
	metrics.ToolCallsTotal.WithLabelValues(label, string(code)).Inc()
	metrics.ToolCallDuration.WithLabelValues(label).Observe(elapsed.Seconds())

	attrs := []any{
		slog.String("tool", name),
		slog.String("outcome_code", string(code)),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
	}

	log := slogx.FromContext(ctx)
	if !failed {
		log.Info("tool_outcome", append(attrs, slog.String("status", "success"))...)
		return
	}

	level := slog.LevelWarn
	if code == outcome.Internal && !errors.Is(ctx.Err(), context.Canceled) {
		level = slog.LevelError
	}
	log.Log(ctx, level, "tool_outcome", append(attrs,
		slog.String("status", "error"),
		slog.String("message", outcome.Truncate(detail)),
	)...)
}
