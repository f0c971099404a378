package gatewaysdk

// ============================================================================
// Settings API
// ============================================================================

// SettingsResponse reports whether upstream credentials are stored.
type SettingsResponse struct {
	// Configured is true when a credential record exists for the caller.
	Configured bool `json:"configured"`

	// ClientID is the stored client id, masked (e.g. "abc****yz").
	ClientID string `json:"clientId,omitempty"`

	// BaseURL is the upstream API endpoint the credential is used against.
	BaseURL string `json:"baseUrl,omitempty"`
}

// SaveSettingsRequest submits upstream credentials.
type SaveSettingsRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`

	// BaseURL is optional; when set it must name the supported endpoint.
	BaseURL string `json:"baseUrl,omitempty"`
}

// SetupRequest submits upstream credentials during the post-login redirect.
type SetupRequest struct {
	// SessionToken is the HS256 token issued by the identity provider's
	// post-login action. Its subject is the identity the credentials belong to.
	SessionToken string `json:"session_token"`

	SaveSettingsRequest
}

// MutationResponse acknowledges a settings change.
type MutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// ClientID is the masked client id that was saved. Absent on delete.
	ClientID string `json:"clientId,omitempty"`
}

// ============================================================================
// Health & discovery
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	// Uptime is the service uptime (e.g. "1h23m45s").
	Uptime string `json:"uptime,omitempty"`

	// Version is the build version.
	Version string `json:"version,omitempty"`

	// Checks is present on /readyz only.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of the gateway's dependencies.
type HealthChecks struct {
	// KVStore is "ok" or an error description.
	KVStore string `json:"kvStore"`

	// Keys is "ok" once the identity provider's signing keys have been fetched.
	Keys string `json:"keys"`
}

// ConfigHealthResponse is returned by /api/health. Each field other than
// Status and Timestamp is "configured" or "missing".
type ConfigHealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	Auth0Domain   string `json:"auth0Domain"`
	Auth0Audience string `json:"auth0Audience"`
	EncryptionKey string `json:"encryptionKey"`
	KVStore       string `json:"kvStore"`
}

// ProtectedResourceMetadata is the OAuth 2.0 protected resource document
// (RFC 9728) that tells MCP clients where to obtain tokens.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
	ResourceName           string   `json:"resource_name"`
}
