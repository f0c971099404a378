package upstream

import (
	"fmt"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/outcome"
)

// AuthFailure is returned when the upstream token endpoint refuses the
// credentials or cannot be reached.
type AuthFailure struct {
	Status int    // 0 when no response was received
	Body   string // response body, or the transport error text
}

func (e *AuthFailure) Error() string {
	return fmt.Sprintf("Mapp authentication failed (%d): %s", e.Status, e.Body)
}

func (e *AuthFailure) PublicMessage() string {
	return fmt.Sprintf("Mapp authentication failed (%d)", e.Status)
}

func (e *AuthFailure) OutcomeCode() outcome.Code { return outcome.UpstreamAuth }

// APIError is a non-2xx response (or transport failure) from an API call.
type APIError struct {
	Method string
	Path   string
	Status int    // 0 when no response was received
	Body   string // response body, or the transport error text
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed (%d): %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *APIError) PublicMessage() string {
	return fmt.Sprintf("%s %s failed (%d)", e.Method, e.Path, e.Status)
}

func (e *APIError) OutcomeCode() outcome.Code { return outcome.UpstreamAPI }

// QueryFailedError is an analysis status that reports FAILED or ERROR.
type QueryFailedError struct {
	Status string
	Body   string // the status document
}

func (e *QueryFailedError) Error() string { return "Query failed: " + e.Body }

func (e *QueryFailedError) PublicMessage() string {
	return fmt.Sprintf("Query failed (%s)", e.Status)
}

func (e *QueryFailedError) OutcomeCode() outcome.Code { return outcome.Internal }

// URLError rejects a URL handed back by the upstream.
type URLError struct {
	Err    error // ErrInvalidURL or ErrUntrustedURL
	Origin string
}

func (e *URLError) Error() string {
	if e.Origin == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Origin
}

func (e *URLError) Unwrap() error { return e.Err }

func (e *URLError) OutcomeCode() outcome.Code { return outcome.Internal }
