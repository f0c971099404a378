package tools

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type eventLogger struct {
	namespace string
	started   sync.Map // request message pointer -> time.Time
}

// NewEventHooks logs every MCP request as mcp_event records tagged with namespace.
func NewEventHooks(namespace string) *server.Hooks {
	l := &eventLogger{namespace: namespace}

	h := &server.Hooks{}
	h.AddBeforeAny(l.received)
	h.AddOnSuccess(l.completed)
	h.AddOnError(l.failed)
	return h
}

func (l *eventLogger) attrs(id any, method mcp.MCPMethod, message any) []any {
	attrs := []any{
		slog.String("namespace", l.namespace),
		slog.Any("request_id", id),
		slog.String("method", string(method)),
	}
	if req, ok := message.(*mcp.CallToolRequest); ok && req.Params.Name != "" {
		attrs = append(attrs, slog.String("tool", req.Params.Name))
	}
	return attrs
}

// key identifies one in-flight request. Request ids repeat across stateless
// clients, so the decoded message pointer is used instead.
func key(message any) (uintptr, bool) {
	v := reflect.ValueOf(message)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return 0, false
	}
	return v.Pointer(), true
}

func (l *eventLogger) elapsed(message any) (time.Duration, bool) {
	k, ok := key(message)
	if !ok {
		return 0, false
	}
	v, ok := l.started.LoadAndDelete(k)
	if !ok {
		return 0, false
	}
	return time.Since(v.(time.Time)), true
}

func (l *eventLogger) received(ctx context.Context, id any, method mcp.MCPMethod, message any) {
	if k, ok := key(message); ok {
		l.started.Store(k, time.Now())
	}
	attrs := append(l.attrs(id, method, message), slog.String("type", "REQUEST_RECEIVED"))
	slogx.FromContext(ctx).Debug("mcp_event", attrs...)
}

func (l *eventLogger) completed(ctx context.Context, id any, method mcp.MCPMethod, message any, _ any) {
	attrs := append(l.attrs(id, method, message),
		slog.String("type", "REQUEST_COMPLETED"),
		slog.String("status", "success"),
	)
	if d, ok := l.elapsed(message); ok {
		attrs = append(attrs, slog.Int64("duration_ms", d.Milliseconds()))
	}
	slogx.FromContext(ctx).Info("mcp_event", attrs...)
}

func (l *eventLogger) failed(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
	attrs := append(l.attrs(id, method, message),
		slog.String("type", "ERROR"),
		slog.String("status", "error"),
		slog.String("error", outcome.Truncate(err.Error())),
	)
	if d, ok := l.elapsed(message); ok {
		attrs = append(attrs, slog.Int64("duration_ms", d.Milliseconds()))
	}
	slogx.FromContext(ctx).Warn("mcp_event", attrs...)
}
