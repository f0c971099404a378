package gatewaysdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/mappmcp/pkg/httpx"
)

// RFC 6750 error codes used on bearer-protected endpoints.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeServerError    = "server_error"
)

// ErrorResponse is the JSON body of every error the gateway writes.
type ErrorResponse struct {
	// Error is a human-readable message, or an RFC 6750 code on 401s.
	Error string `json:"error"`

	// ErrorDescription elaborates on an RFC 6750 code.
	ErrorDescription string `json:"error_description,omitempty"`
}

// APIError is a non-2xx response as seen by SDKClient.
type APIError struct {
	StatusCode  int
	Message     string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Message, e.Description)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// WriteError writes msg as an ErrorResponse with status code.
func WriteError(w http.ResponseWriter, code int, msg string) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, code, ErrorResponse{Error: msg})
}

// parseErrorResponse converts an error response into an *APIError. The body
// is used verbatim when it is not an ErrorResponse.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Message:     errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	msg := string(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
