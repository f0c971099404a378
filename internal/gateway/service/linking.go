package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/metrics"
	"github.com/aussiebroadwan/mappmcp/pkg/cryptox"
	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
	"golang.org/x/oauth2"
)

const (
	StateCookie    = "mapp_settings_oauth_state"
	VerifierCookie = "mapp_settings_oauth_pkce"
	CallbackPath   = "/api/auth/callback"

	// LinkSessionTTL bounds how long a browser has to complete the login.
	LinkSessionTTL = 600 * time.Second
)

var linkScopes = []string{"openid", "profile", "email"}

var (
	ErrLinkNotConfigured = errors.New("Auth configuration incomplete for settings page")
	ErrExchangeFailed    = errors.New("Token exchange failed")
)

// LinkSession is the per-browser state of one login attempt.
type LinkSession struct {
	State     string
	Verifier  string
	Challenge string
}

// LinkConfig names the identity provider client used by the settings page.
type LinkConfig struct {
	Domain       string
	Audience     string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	// Endpoint overrides the provider URLs derived from Domain.
	Endpoint oauth2.Endpoint
}

// LinkService drives the browser authorization-code flow that yields an
// access token for the settings page.
type LinkService struct {
	cfg      LinkConfig
	endpoint oauth2.Endpoint
}

func NewLinkService(cfg LinkConfig) *LinkService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		base := "https://" + jwtx.NormalizeDomain(cfg.Domain)
		endpoint = oauth2.Endpoint{
			AuthURL:   base + "/authorize",
			TokenURL:  base + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}
	return &LinkService{cfg: cfg, endpoint: endpoint}
}

// Configured reports whether every setting the flow needs is present.
func (s *LinkService) Configured() bool {
	return jwtx.NormalizeDomain(s.cfg.Domain) != "" && s.cfg.Audience != "" && s.cfg.ClientID != ""
}

// CanExchange reports whether the callback can redeem codes, which also
// needs the client secret.
func (s *LinkService) CanExchange() bool {
	return s.Configured() && s.cfg.ClientSecret != ""
}

// BeginLink creates a fresh state and PKCE pair.
func BeginLink() (LinkSession, error) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return LinkSession{}, err
	}
	pkce, err := cryptox.GeneratePKCE()
	if err != nil {
		return LinkSession{}, err
	}
	metrics.LinkFlowsTotal.WithLabelValues("started").Inc()
	return LinkSession{State: state, Verifier: pkce.Verifier, Challenge: pkce.Challenge}, nil
}

// ValidateCallback accepts a callback only when both states are present and
// equal and a verifier survived the round trip.
func ValidateCallback(returnedState, expectedState, verifier string) bool {
	return cryptox.TokensEqual(returnedState, expectedState) && verifier != ""
}

func (s *LinkService) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		Endpoint:     s.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       linkScopes,
	}
}

// AuthorizeURL returns the provider login URL for sess.
func (s *LinkService) AuthorizeURL(redirectURI string, sess LinkSession) string {
	return s.oauthConfig(redirectURI).AuthCodeURL(sess.State,
		oauth2.SetAuthURLParam("audience", s.cfg.Audience),
		oauth2.S256ChallengeOption(sess.Verifier),
	)
}

// Exchange trades an authorization code for the provider access token.
func (s *LinkService) Exchange(ctx context.Context, code, redirectURI, verifier string) (string, error) {
	if s.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.cfg.HTTPClient)
	}

	tok, err := s.oauthConfig(redirectURI).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		metrics.LinkFlowsTotal.WithLabelValues("failed").Inc()
		slogx.FromContext(ctx).Warn("authorization code exchange failed", "err", err)
		return "", fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		metrics.LinkFlowsTotal.WithLabelValues("failed").Inc()
		return "", ErrExchangeFailed
	}

	metrics.LinkFlowsTotal.WithLabelValues("completed").Inc()
	return tok.AccessToken, nil
}

func linkCookie(name, value string, secure bool, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     CallbackPath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetLinkCookies stores sess in the browser until the callback.
func SetLinkCookies(w http.ResponseWriter, sess LinkSession, secure bool) {
	maxAge := int(LinkSessionTTL / time.Second)
	http.SetCookie(w, linkCookie(StateCookie, sess.State, secure, maxAge))
	http.SetCookie(w, linkCookie(VerifierCookie, sess.Verifier, secure, maxAge))
}

// ClearLinkCookies expires both link cookies.
func ClearLinkCookies(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, linkCookie(StateCookie, "", secure, -1))
	http.SetCookie(w, linkCookie(VerifierCookie, "", secure, -1))
}

// ReadLinkCookies returns the stored state and verifier, empty when absent.
func ReadLinkCookies(r *http.Request) (state, verifier string) {
	if c, err := r.Cookie(StateCookie); err == nil {
		state = c.Value
	}
	if c, err := r.Cookie(VerifierCookie); err == nil {
		verifier = c.Value
	}
	return state, verifier
}
