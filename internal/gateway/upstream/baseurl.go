package upstream

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
)

var (
	ErrInvalidURL   = errors.New("Upstream URL is invalid")
	ErrUntrustedURL = errors.New("Untrusted upstream URL origin")
)

// ResolveBaseURL validates a configured base URL. Empty selects the supported
// endpoint; anything else must name it exactly (a trailing slash is tolerated).
func ResolveBaseURL(configured string) (string, error) {
	v := strings.TrimRight(strings.TrimSpace(configured), "/")
	if v == "" || v == domain.SupportedBaseURL {
		return domain.SupportedBaseURL, nil
	}
	return "", fmt.Errorf("MAPP_API_BASE_URL must be %s, got %q", domain.SupportedBaseURL, configured)
}

// AssertTrusted parses raw and requires https and the same origin as base.
// Every absolute URL returned by the upstream passes through here before it
// is fetched with the user's bearer token.
func AssertTrusted(raw, base string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &URLError{Err: ErrInvalidURL}
	}

	allowed, err := url.Parse(base)
	if err != nil {
		return nil, &URLError{Err: ErrInvalidURL}
	}

	origin := u.Scheme + "://" + u.Host
	if u.Scheme != "https" || !strings.EqualFold(u.Host, allowed.Host) || u.Scheme != allowed.Scheme || u.User != nil {
		return nil, &URLError{Err: ErrUntrustedURL, Origin: origin}
	}
	return u, nil
}
