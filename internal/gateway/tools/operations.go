package tools

import (
	"context"
	"net/url"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/upstream"
)

// Operation is how a tool reaches the analytics API. The set of kinds is
// closed: GetOp, PostOp, DeleteOp, RunAnalysisOp and RunReportOp.
type Operation interface {
	// prepare validates args and returns the call to perform. It runs before
	// any credential or token work so bad input fails cheaply.
	prepare(args Args) (call, error)
}

type call func(ctx context.Context, e *env) (any, error)

// env is what an operation may use once a token has been acquired.
type env struct {
	session *upstream.Session
	poller  upstream.Poller
}

func idPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}

// GetOp reads a resource, optionally addressed by an ID argument.
type GetOp struct {
	Path     string
	IDParam  string
	Language bool // forward a "language" argument, defaulting to "en"
}

func (op GetOp) prepare(args Args) (call, error) {
	path := op.Path
	if op.IDParam != "" {
		id, err := args.ID(op.IDParam)
		if err != nil {
			return nil, err
		}
		path = idPath(op.Path, id)
	}

	var query url.Values
	if op.Language {
		query = url.Values{"language": {args.String("language", "en")}}
	}

	return func(ctx context.Context, e *env) (any, error) {
		return e.session.Get(ctx, path, query)
	}, nil
}

// PostOp submits a body built from the arguments.
type PostOp struct {
	Path string
	Body func(Args) (map[string]any, error)
}

func (op PostOp) prepare(args Args) (call, error) {
	body, err := op.Body(args)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, e *env) (any, error) {
		return e.session.Post(ctx, op.Path, body)
	}, nil
}

// DeleteOp cancels a resource addressed by an ID argument.
type DeleteOp struct {
	Path    string
	IDParam string
}

func (op DeleteOp) prepare(args Args) (call, error) {
	id, err := args.ID(op.IDParam)
	if err != nil {
		return nil, err
	}
	path := idPath(op.Path, id)
	return func(ctx context.Context, e *env) (any, error) {
		return e.session.Delete(ctx, path)
	}, nil
}

func analysisBody(args Args) (map[string]any, error) {
	query, err := args.Object("queryObject", true)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"resultType":  args.String("resultType", "DATA_ONLY"),
		"queryObject": query,
	}, nil
}

func reportBody(args Args) (map[string]any, error) {
	body := map[string]any{}

	if id, ok, err := args.Number("id"); err != nil {
		return nil, err
	} else if ok {
		body["id"] = id
	}

	if ids, ok, err := args.Numbers("elementIds"); err != nil {
		return nil, err
	} else if ok {
		body["elementIds"] = ids
	}

	if cfg, err := args.Object("configuration", false); err != nil {
		return nil, err
	} else if cfg != nil {
		body["configuration"] = cfg
	}

	return body, nil
}
