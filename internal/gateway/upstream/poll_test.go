package upstream

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
	"github.com/stretchr/testify/require"
)

func TestPoller_Poll(t *testing.T) {
	t.Parallel()

	t.Run("done on third attempt", func(t *testing.T) {
		t.Parallel()
		var n int
		res, err := Poller{MaxAttempts: 5, Interval: time.Millisecond}.Poll(context.Background(), "Report",
			func(context.Context) (any, bool, error) {
				n++
				return n, n == 3, nil
			})
		require.NoError(t, err)
		require.Equal(t, 3, res)
	})

	t.Run("exhausted", func(t *testing.T) {
		t.Parallel()
		var n int
		_, err := Poller{MaxAttempts: 4, Interval: time.Millisecond}.Poll(context.Background(), "Report",
			func(context.Context) (any, bool, error) {
				n++
				return nil, false, nil
			})
		var ex *ExhaustedError
		require.ErrorAs(t, err, &ex)
		require.Equal(t, 4, n)
		require.Equal(t, "Report did not complete after 4 polling attempts", err.Error())
	})

	t.Run("check error stops", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		_, err := Poller{MaxAttempts: 4, Interval: time.Millisecond}.Poll(context.Background(), "Report",
			func(context.Context) (any, bool, error) { return nil, false, boom })
		require.ErrorIs(t, err, boom)
	})

	t.Run("context cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Poller{MaxAttempts: 4, Interval: time.Hour}.Poll(ctx, "Report",
			func(context.Context) (any, bool, error) { return nil, false, nil })
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPoller_PollAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("result url", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		srv, s := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 2 {
				_, _ = w.Write([]byte(`{"status":"RUNNING"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"SUCCESS","resultUrl":"https://example/result"}`))
		})

		status, err := Poller{MaxAttempts: 5, Interval: time.Millisecond}.PollAnalysis(context.Background(), s, srv.URL+"/status/1")
		require.NoError(t, err)
		require.Equal(t, "https://example/result", status["resultUrl"])
	})

	t.Run("failed", func(t *testing.T) {
		t.Parallel()
		srv, s := newAPI(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"FAILED"}`))
		})

		_, err := Poller{MaxAttempts: 5, Interval: time.Millisecond}.PollAnalysis(context.Background(), s, srv.URL+"/status/1")
		require.EqualError(t, err, `Query failed: {"status":"FAILED"}`)
		m := outcome.Classify(err)
		require.Equal(t, outcome.Internal, m.Code)
		require.Equal(t, "Query failed (FAILED)", m.Message)
	})

	t.Run("untrusted status url", func(t *testing.T) {
		t.Parallel()
		_, s := newAPI(t, func(http.ResponseWriter, *http.Request) {})

		_, err := Poller{MaxAttempts: 2, Interval: time.Millisecond}.PollAnalysis(context.Background(), s, "https://other.example/status")
		require.ErrorIs(t, err, ErrUntrustedURL)
	})
}
