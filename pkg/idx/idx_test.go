package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/mappmcp/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	id := idx.New()

	require.Len(t, id.String(), 26)
	require.False(t, id.Time().Before(before))
}

func TestNewAt_MonotonicWithinMillisecond(t *testing.T) {
	tm := time.UnixMilli(1_700_000_000_123)

	ids := make([]string, 16)
	for i := range ids {
		ids[i] = idx.NewAt(tm).String()
	}
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1], ids[i])
	}
	require.True(t, tm.Equal(idx.ID(ids[0]).Time()))
}

func TestTime_Malformed(t *testing.T) {
	for _, s := range []string{"", "bogus", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z!"} {
		require.True(t, idx.ID(s).Time().IsZero(), s)
	}
}
