package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHousekeepingService_Loop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	task := PruneTask("count", func(time.Time) int {
		calls.Add(1)
		return 1
	})

	s := NewHousekeepingService(slog.New(slog.DiscardHandler), 5*time.Millisecond, task)
	s.Start()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, after, calls.Load())
}

func TestHousekeepingService_RunOnce(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var seen []time.Time
	s := NewHousekeepingService(logger, time.Hour,
		HousekeepingTask{Name: "broken", Run: func(context.Context, time.Time) (int, error) {
			return 0, errors.New("disk full")
		}},
		PruneTask("tokens", func(now time.Time) int {
			seen = append(seen, now)
			return 3
		}),
	)
	s.now = func() time.Time { return fixed }

	s.RunOnce(context.Background())

	require.Equal(t, []time.Time{fixed}, seen, "a failing task does not stop later ones")
	require.Contains(t, buf.String(), `task=broken err="disk full"`)
	require.Contains(t, buf.String(), "task=tokens affected=3")

	// Cancelled passes skip remaining work.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunOnce(ctx)
	require.Len(t, seen, 1)
}

func TestNewHousekeepingService_Defaults(t *testing.T) {
	t.Parallel()

	s := NewHousekeepingService(slog.Default(), 0)
	require.Equal(t, 5*time.Minute, s.Interval)

	// Stop before Start is a no-op.
	s.Stop()
}
