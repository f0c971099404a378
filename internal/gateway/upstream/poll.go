package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
)

const (
	DefaultPollAttempts = 30
	DefaultPollInterval = 2 * time.Second
)

// Poller repeats a check a bounded number of times.
type Poller struct {
	MaxAttempts int
	Interval    time.Duration
}

// ExhaustedError reports that polling ran out of attempts.
type ExhaustedError struct {
	What     string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s did not complete after %d polling attempts", e.What, e.Attempts)
}

func (e *ExhaustedError) OutcomeCode() outcome.Code { return outcome.Internal }

func (p Poller) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultPollAttempts
	}
	return p.MaxAttempts
}

// Poll calls check until it reports done, returns an error, the context
// ends, or the attempts run out. It waits Interval between attempts.
func (p Poller) Poll(ctx context.Context, what string, check func(ctx context.Context) (any, bool, error)) (any, error) {
	n := p.attempts()
	for i := range n {
		res, done, err := check(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return res, nil
		}
		if i == n-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.Interval):
		}
	}
	return nil, &ExhaustedError{What: what, Attempts: n}
}

// PollAnalysis follows an analysis status URL until it exposes a resultUrl.
func (p Poller) PollAnalysis(ctx context.Context, s *Session, statusURL string) (map[string]any, error) {
	res, err := p.Poll(ctx, "Query", func(ctx context.Context) (any, bool, error) {
		raw, err := s.GetAbsolute(ctx, statusURL)
		if err != nil {
			return nil, false, err
		}
		status, _ := raw.(map[string]any)
		if url, _ := status["resultUrl"].(string); url != "" {
			return status, true, nil
		}
		if st, _ := status["status"].(string); st == "FAILED" || st == "ERROR" {
			b, _ := json.Marshal(raw)
			return nil, false, &QueryFailedError{Status: st, Body: string(b)}
		}
		return nil, false, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]any), nil
}
