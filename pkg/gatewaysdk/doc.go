/*
Package gatewaysdk provides a client SDK and the shared wire types for the
mappmcp gateway's HTTP API.

# Overview

The gateway exposes a small REST surface next to its MCP endpoints: a settings
API for managing a user's upstream credentials, a setup API used during the
identity provider's post-login redirect, and health and discovery endpoints.
The types in this package are used by the gateway's handlers to write
responses and by SDKClient to read them.

	client := gatewaysdk.NewSDKClient("https://mcp.example.com")

	// Check service health
	health, err := client.GetHealth(ctx)

	// Link upstream credentials for the bearer token's subject
	saved, err := client.SaveSettings(ctx, accessToken, gatewaysdk.SaveSettingsRequest{
		ClientID:     "my-client",
		ClientSecret: "my-secret",
	})

	// Inspect what is stored (the client id comes back masked)
	status, err := client.GetSettings(ctx, accessToken)

# Errors

Non-2xx responses are returned as *APIError, carrying the HTTP status and the
decoded {error, error_description} body:

	var apiErr *gatewaysdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// token expired; re-run the login flow
	}
*/
package gatewaysdk
