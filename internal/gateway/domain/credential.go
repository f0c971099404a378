package domain

import (
	"errors"
	"log/slog"
	"strings"
)

// SupportedBaseURL is the only upstream analytics endpoint credentials may target.
const SupportedBaseURL = "https://intelligence.eu.mapp.com"

// ErrBaseURL is returned when a caller submits a base URL other than SupportedBaseURL.
var ErrBaseURL = errors.New("baseUrl must be " + SupportedBaseURL)

// Identity is the provider-issued subject of a verified access token. It is
// opaque and used only as a lookup key.
type Identity string

// UpstreamCredential is a user's client-credentials pair for the analytics API.
type UpstreamCredential struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// LogValue keeps the secret out of logs.
func (c UpstreamCredential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", MaskClientID(c.ClientID)),
		slog.String("base_url", c.BaseURL),
	)
}

// MaskClientID shows the first three and last two characters of a client id.
// Short ids are fully masked.
func MaskClientID(id string) string {
	if len(id) <= 5 {
		return "****"
	}
	return id[:3] + "****" + id[len(id)-2:]
}

// ValidateSubmittedBaseURL accepts an empty value (meaning "use the default")
// or exactly SupportedBaseURL after trimming whitespace.
func ValidateSubmittedBaseURL(raw string) error {
	v := strings.TrimSpace(raw)
	if v == "" || v == SupportedBaseURL {
		return nil
	}
	return ErrBaseURL
}
