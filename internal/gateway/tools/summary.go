package tools

import (
	"slices"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
)

const (
	maxSummaryKeys = 25

	warnQuotaZero = "[WARN_QUOTA_ZERO] Analysis quota maximum is 0 for this account. Analysis API calculations may be disabled."
)

// Summary is a shape description of a tool result, for clients that render it.
type Summary struct {
	Kind     string   `json:"kind"` // object, array, primitive or null
	Keys     []string `json:"keys"`
	RowCount *int     `json:"rowCount"`
	Warnings []string `json:"warnings"`
}

// StructuredResult is the structured content attached to results on the
// chat-client endpoint.
type StructuredResult struct {
	Tool     string   `json:"tool"`
	Category Category `json:"category"`
	Data     any      `json:"data"`
	Summary  Summary  `json:"summary"`
}

// Summarize describes data. Object keys are sorted, then capped.
func Summarize(data any) Summary {
	s := Summary{Keys: []string{}, Warnings: []string{}}

	switch v := data.(type) {
	case nil:
		s.Kind = "null"
	case []any:
		s.Kind = "array"
		n := len(v)
		s.RowCount = &n
	case map[string]any:
		s.Kind = "object"
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		if len(keys) > maxSummaryKeys {
			keys = keys[:maxSummaryKeys]
		}
		s.Keys = keys

		if rows, ok := v["rows"].([]any); ok {
			n := len(rows)
			s.RowCount = &n
		}
		if outcome.QuotaIsZero(v) {
			s.Warnings = append(s.Warnings, warnQuotaZero)
		}
	default:
		s.Kind = "primitive"
	}
	return s
}

// Structure builds the structured content for r.
func Structure(r Result) StructuredResult {
	return StructuredResult{
		Tool:     r.Tool.Name,
		Category: r.Tool.Category,
		Data:     r.Data,
		Summary:  Summarize(r.Data),
	}
}
