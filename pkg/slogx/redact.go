package slogx

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of any attribute that looks like a secret.
const Redacted = "[REDACTED]"

var secretKeys = []string{
	"secret",
	"password",
	"token",
	"authorization",
	"cookie",
	"verifier",
	"envelope",
}

// Redact is a slog ReplaceAttr hook that blanks attributes whose key names a
// credential. It matches case-insensitively on substrings, so
// "client_secret", "clientSecret" and "access_token" are all covered.
func Redact(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	key := strings.ToLower(a.Key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return slog.String(a.Key, Redacted)
		}
	}
	return a
}
