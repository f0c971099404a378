package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/metrics"
	"github.com/aussiebroadwan/mappmcp/pkg/jwtx"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
)

var (
	ErrMissingFields       = errors.New("clientId and clientSecret are required")
	ErrMissingSessionToken = errors.New("session_token is required")
	ErrSetupNotConfigured  = errors.New("Server misconfigured: AUTH0_ACTION_SECRET not set")
	ErrInvalidSession      = errors.New("Invalid or expired session token")
	ErrSessionNoSubject    = errors.New("Session token missing sub claim")
)

// CredentialStore is the subset of the credential store the services use.
type CredentialStore interface {
	Save(ctx context.Context, id domain.Identity, cred domain.UpstreamCredential) error
	Load(ctx context.Context, id domain.Identity) (*domain.UpstreamCredential, error)
	Delete(ctx context.Context, id domain.Identity) error
	Exists(ctx context.Context, id domain.Identity) (bool, error)
}

// SettingsStatus describes what is stored for an identity without revealing it.
type SettingsStatus struct {
	Configured bool   `json:"configured"`
	ClientID   string `json:"clientId,omitempty"`
	BaseURL    string `json:"baseUrl,omitempty"`
}

// CredentialInput is a credential submitted by the user.
type CredentialInput struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	BaseURL      string `json:"baseUrl,omitempty"`
}

func (in CredentialInput) validate() error {
	if in.ClientID == "" || in.ClientSecret == "" {
		return ErrMissingFields
	}
	return domain.ValidateSubmittedBaseURL(in.BaseURL)
}

// SetupRequest is the body the post-login setup page submits.
type SetupRequest struct {
	SessionToken string `json:"session_token"`
	CredentialInput
}

// SettingsService manages an identity's stored upstream credentials.
type SettingsService struct {
	Credentials CredentialStore
	BaseURL     string

	// SetupVerifier checks setup session tokens. Nil disables setup.
	SetupVerifier jwtx.Verifier
}

// Status reports whether credentials are stored. A record that exists but
// cannot be read is still reported as configured, with a fully masked id.
func (s *SettingsService) Status(ctx context.Context, id domain.Identity) (SettingsStatus, error) {
	ok, err := s.Credentials.Exists(ctx, id)
	if err != nil || !ok {
		return SettingsStatus{}, err
	}

	cred, err := s.Credentials.Load(ctx, id)
	if err != nil {
		return SettingsStatus{}, err
	}
	if cred == nil {
		return SettingsStatus{Configured: true, ClientID: domain.MaskClientID(""), BaseURL: s.BaseURL}, nil
	}
	return SettingsStatus{Configured: true, ClientID: domain.MaskClientID(cred.ClientID), BaseURL: cred.BaseURL}, nil
}

// Save validates and stores in for id, returning the masked client id.
func (s *SettingsService) Save(ctx context.Context, id domain.Identity, in CredentialInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	if err := s.save(ctx, id, in); err != nil {
		return "", err
	}
	return domain.MaskClientID(in.ClientID), nil
}

// Delete removes id's credentials. Deleting nothing is not an error.
func (s *SettingsService) Delete(ctx context.Context, id domain.Identity) error {
	err := s.Credentials.Delete(ctx, id)
	recordCredentialOp("delete", err)
	if err == nil {
		slogx.FromContext(ctx).Info("upstream credentials deleted", "identity", id)
	}
	return err
}

// Setup stores credentials for the subject of a setup session token.
func (s *SettingsService) Setup(ctx context.Context, req SetupRequest) (domain.Identity, error) {
	if s.SetupVerifier == nil {
		return "", ErrSetupNotConfigured
	}
	if strings.TrimSpace(req.SessionToken) == "" {
		return "", ErrMissingSessionToken
	}
	if err := req.validate(); err != nil {
		return "", err
	}

	claims, err := s.SetupVerifier.Verify(ctx, req.SessionToken)
	if err != nil {
		var authErr *jwtx.AuthError
		if errors.As(err, &authErr) {
			slogx.FromContext(ctx).Info("setup session token rejected", "reason", authErr.Reason)
		}
		if errors.Is(err, jwtx.ErrMissingSubject) {
			return "", ErrSessionNoSubject
		}
		return "", ErrInvalidSession
	}

	id := domain.Identity(claims.Subject)
	if err := s.save(ctx, id, req.CredentialInput); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SettingsService) save(ctx context.Context, id domain.Identity, in CredentialInput) error {
	cred := domain.UpstreamCredential{ClientID: in.ClientID, ClientSecret: in.ClientSecret, BaseURL: s.BaseURL}
	err := s.Credentials.Save(ctx, id, cred)
	recordCredentialOp("save", err)
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("upstream credentials saved", "identity", id, slog.Any("cred", cred))
	return nil
}

func recordCredentialOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CredentialOpsTotal.WithLabelValues(op, result).Inc()
}
