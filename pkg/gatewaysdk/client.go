package gatewaysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the gateway's HTTP API.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the gateway at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service is ready to serve traffic.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHealth reports which required settings the service is running with.
// A 503 response is decoded rather than returned as an error.
func (c *SDKClient) GetHealth(ctx context.Context) (*ConfigHealthResponse, int, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/health", "", nil)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var out ConfigHealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, resp.StatusCode, nil
}

// GetProtectedResourceMetadata fetches the RFC 9728 discovery document.
func (c *SDKClient) GetProtectedResourceMetadata(ctx context.Context) (*ProtectedResourceMetadata, error) {
	var out ProtectedResourceMetadata
	if err := c.do(ctx, http.MethodGet, "/.well-known/oauth-protected-resource", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSettings reports what is stored for the token's subject.
func (c *SDKClient) GetSettings(ctx context.Context, accessToken string) (*SettingsResponse, error) {
	var out SettingsResponse
	if err := c.do(ctx, http.MethodGet, "/api/settings", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveSettings stores upstream credentials for the token's subject.
func (c *SDKClient) SaveSettings(ctx context.Context, accessToken string, req SaveSettingsRequest) (*MutationResponse, error) {
	var out MutationResponse
	if err := c.do(ctx, http.MethodPost, "/api/settings", accessToken, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSettings removes the token subject's upstream credentials.
func (c *SDKClient) DeleteSettings(ctx context.Context, accessToken string) (*MutationResponse, error) {
	var out MutationResponse
	if err := c.do(ctx, http.MethodDelete, "/api/settings", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Setup stores upstream credentials using a post-login session token.
func (c *SDKClient) Setup(ctx context.Context, req SetupRequest) (*MutationResponse, error) {
	var out MutationResponse
	if err := c.do(ctx, http.MethodPost, "/api/setup", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.doRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (c *SDKClient) doRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON decodes a 2xx response into target, or returns an *APIError.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
