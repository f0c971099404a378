package jwtx

import (
	"context"
	"errors"
	"time"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// DefaultLeeway is the clock skew tolerated on exp/nbf.
const DefaultLeeway = 30 * time.Second

var (
	// ErrAuthInvalid is the single error callers see for any rejected token.
	ErrAuthInvalid = errors.New("jwtx: invalid or expired token")

	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrUnknownKID     = errors.New("jwtx: unknown kid")
	ErrMissingKID     = errors.New("jwtx: missing kid")
	ErrKeyType        = errors.New("jwtx: key type does not match algorithm")
	ErrIssuer         = errors.New("jwtx: issuer mismatch")
	ErrAudience       = errors.New("jwtx: audience mismatch")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrNotYetValid    = errors.New("jwtx: token not yet valid")
	ErrMissingSubject = errors.New("jwtx: missing sub claim")
	ErrNotConfigured  = errors.New("jwtx: verifier is not configured")
)

// AuthError wraps the concrete rejection reason behind ErrAuthInvalid. Its
// message never reveals the reason; use errors.Is or Reason for logging.
type AuthError struct {
	Reason error
}

func (e *AuthError) Error() string { return ErrAuthInvalid.Error() }

func (e *AuthError) Unwrap() []error { return []error{ErrAuthInvalid, e.Reason} }

func invalid(reason error) error {
	return &AuthError{Reason: reason}
}
