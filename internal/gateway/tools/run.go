package tools

import (
	"context"
	"maps"
	"strconv"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/upstream"
)

// RunAnalysisOp submits an analysis query and waits for its result.
type RunAnalysisOp struct{}

func (RunAnalysisOp) prepare(args Args) (call, error) {
	body, err := analysisBody(args)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, e *env) (any, error) {
		return runAnalysis(ctx, e, body)
	}, nil
}

func runAnalysis(ctx context.Context, e *env, body map[string]any) (any, error) {
	created, err := e.session.Post(ctx, pathAnalysisQuery, body)
	if err != nil {
		return nil, err
	}

	resp, _ := created.(map[string]any)
	if u, _ := resp["resultUrl"].(string); u != "" {
		return e.session.GetAbsolute(ctx, u)
	}
	if u, _ := resp["statusUrl"].(string); u != "" {
		status, err := e.poller.PollAnalysis(ctx, e.session, u)
		if err != nil {
			return nil, err
		}
		return e.session.GetAbsolute(ctx, status["resultUrl"].(string))
	}
	return created, nil
}

// RunReportOp submits a report query, waits until every element settles and
// fetches each successful element's result.
type RunReportOp struct{}

func (RunReportOp) prepare(args Args) (call, error) {
	body, err := reportBody(args)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, e *env) (any, error) {
		return runReport(ctx, e, body)
	}, nil
}

func runReport(ctx context.Context, e *env, body map[string]any) (any, error) {
	created, err := e.session.Post(ctx, pathReportQuery, body)
	if err != nil {
		return nil, err
	}

	resp, _ := created.(map[string]any)
	correlationID := reportID(resp["reportCorrelationId"])
	if correlationID == "" {
		return created, nil
	}

	statusPath := idPath(pathReportQuery, correlationID)
	polled, err := e.poller.Poll(ctx, "Report", func(ctx context.Context) (any, bool, error) {
		raw, err := e.session.Get(ctx, statusPath, nil)
		if err != nil {
			return nil, false, err
		}
		status, _ := raw.(map[string]any)
		return status, reportSettled(status), nil
	})
	if err != nil {
		return nil, err
	}

	status := polled.(map[string]any)
	states, _ := status["queryStates"].([]any)

	elements := make([]any, 0, len(states))
	for _, s := range states {
		elements = append(elements, reportElement(ctx, e.session, s))
	}

	return map[string]any{
		"reportCorrelationId": resp["reportCorrelationId"],
		"reportStatus":        status["status"],
		"elements":            elements,
	}, nil
}

func reportID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

// reportSettled is true once queryStates is present and every state is terminal.
func reportSettled(status map[string]any) bool {
	states, ok := status["queryStates"].([]any)
	if !ok {
		return false
	}
	for _, s := range states {
		qs, _ := s.(map[string]any)
		switch qs["status"] {
		case "SUCCESS", "FAILED", "ERROR":
		default:
			return false
		}
	}
	return true
}

// reportElement resolves one query state. Fetch failures are reported on the
// element and never fail the report.
func reportElement(ctx context.Context, s *upstream.Session, raw any) map[string]any {
	qs, _ := raw.(map[string]any)
	elementID := qs["elementId"]
	status, _ := qs["status"].(string)
	resultURL, _ := qs["resultUrl"].(string)

	if status != "SUCCESS" || resultURL == "" {
		errVal := qs["error"]
		if errVal == "" {
			errVal = nil
		}
		return map[string]any{"elementId": elementID, "status": status, "error": errVal}
	}

	result, err := s.GetAbsolute(ctx, resultURL)
	if err != nil {
		return map[string]any{"elementId": elementID, "error": err.Error()}
	}

	out := map[string]any{"elementId": elementID}
	if obj, ok := result.(map[string]any); ok {
		maps.Copy(out, obj)
	} else if result != nil {
		out["data"] = result
	}
	return out
}
