package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is advertised to MCP clients.
const ServerName = "mapp-intelligence"

// Variant selects how results are rendered.
type Variant string

const (
	// VariantMCP returns results as pretty-printed JSON text.
	VariantMCP Variant = "mcp"
	// VariantChatGPT additionally attaches StructuredResult content.
	VariantChatGPT Variant = "chatgpt"
)

// NewMCPServer registers every tool of o on a new MCP server.
func NewMCPServer(o *Orchestrator, variant Variant, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithHooks(NewEventHooks(string(variant))),
		server.WithRecovery(),
	)
	for _, d := range o.Registry().All() {
		s.AddTool(d.Tool(), toolHandler(o, d, variant))
	}
	return s
}

// NewHTTPHandler serves s over stateless streamable HTTP at path. The
// authenticated identity and request logger flow from the inbound request
// into every tool call.
func NewHTTPHandler(s *server.MCPServer, path string) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithEndpointPath(path),
		server.WithStateLess(true),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if sub, ok := httpx.IdentityFromContext(r.Context()); ok {
				ctx = httpx.WithIdentity(ctx, sub)
			}
			return slogx.WithContext(ctx, slogx.FromContext(r.Context()))
		}),
	)
}

// Tool renders d as an MCP tool definition.
func (d *Descriptor) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithTitleAnnotation(d.Title),
		mcp.WithReadOnlyHintAnnotation(d.ReadOnly()),
		mcp.WithOpenWorldHintAnnotation(true),
	}

	for _, p := range d.Params {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Kind {
		case ParamString:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		case ParamNumber:
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case ParamObject:
			opts = append(opts, mcp.WithObject(p.Name, popts...))
		case ParamNumberArray:
			popts = append(popts, mcp.Items(map[string]any{"type": "number"}))
			opts = append(opts, mcp.WithArray(p.Name, popts...))
		}
	}

	return mcp.NewTool(d.Name, opts...)
}

func toolHandler(o *Orchestrator, d *Descriptor, variant Variant) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := o.Invoke(ctx, d.Name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := resultText(res.Data)
		if variant == VariantChatGPT {
			return mcp.NewToolResultStructured(Structure(res), text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func resultText(data any) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprint(data)
	}
	return string(b)
}
