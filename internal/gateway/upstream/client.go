package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/metrics"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 30 * time.Second

const maxBody = 16 << 20

// NewHTTPClient returns the HTTP client shared by the token cache and API client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		// Redirects would carry the bearer token to wherever the upstream points.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Client talks to the analytics REST API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates an API client rooted at baseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Session binds an access token to the client.
func (c *Client) Session(token string) *Session {
	return &Session{client: c, token: token}
}

// Session performs API calls with one access token. Responses are decoded
// into generic JSON values; an empty body decodes to nil.
type Session struct {
	client *Client
	token  string
}

// Get calls GET path with optional query parameters.
func (s *Session) Get(ctx context.Context, path string, query url.Values) (any, error) {
	target := s.client.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return s.do(ctx, http.MethodGet, path, target, nil)
}

// Post calls POST path with a JSON body.
func (s *Session) Post(ctx context.Context, path string, body any) (any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return s.do(ctx, http.MethodPost, path, s.client.baseURL+path, payload)
}

// Delete calls DELETE path and reports the status on success.
func (s *Session) Delete(ctx context.Context, path string) (any, error) {
	resp, _, err := s.send(ctx, http.MethodDelete, path, s.client.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "status": resp.StatusCode}, nil
}

// GetAbsolute fetches a URL handed back by the API (result and status
// links). The URL must share the API's origin.
func (s *Session) GetAbsolute(ctx context.Context, raw string) (any, error) {
	u, err := AssertTrusted(raw, s.client.baseURL)
	if err != nil {
		return nil, err
	}
	return s.do(ctx, http.MethodGet, u.Path, u.String(), nil)
}

func (s *Session) do(ctx context.Context, method, path, target string, body []byte) (any, error) {
	_, data, err := s.send(ctx, method, path, target, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s %s returned a non-JSON response: %w", method, path, err)
	}
	return out, nil
}

func (s *Session) send(ctx context.Context, method, path, target string, body []byte) (*http.Response, []byte, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, nil, &APIError{Method: method, Path: path, Body: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	if id := slogx.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, nil, &APIError{Method: method, Path: path, Body: err.Error()}
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, nil, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}
	return resp, data, nil
}
