package tools

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestSummarize(t *testing.T) {
	t.Parallel()

	many := map[string]any{}
	for i := range 30 {
		many[fmt.Sprintf("k%02d", i)] = i
	}

	tests := []struct {
		name string
		data any
		want Summary
	}{
		{"null", nil, Summary{Kind: "null", Keys: []string{}, Warnings: []string{}}},
		{"array", []any{1, 2, 3}, Summary{Kind: "array", Keys: []string{}, RowCount: intPtr(3), Warnings: []string{}}},
		{"primitive", "ok", Summary{Kind: "primitive", Keys: []string{}, Warnings: []string{}}},
		{
			"object with rows",
			map[string]any{"rows": []any{1, 2}, "headers": []any{}},
			Summary{Kind: "object", Keys: []string{"headers", "rows"}, RowCount: intPtr(2), Warnings: []string{}},
		},
		{
			"zero quota",
			map[string]any{"maximum": float64(0), "current": float64(0)},
			Summary{Kind: "object", Keys: []string{"current", "maximum"}, Warnings: []string{warnQuotaZero}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Summarize(tt.data))
		})
	}

	t.Run("keys capped", func(t *testing.T) {
		s := Summarize(many)
		require.Len(t, s.Keys, maxSummaryKeys)
		require.Equal(t, "k00", s.Keys[0])
		require.Equal(t, "k24", s.Keys[24])
	})
}
