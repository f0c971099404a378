package jwtx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultMinRefreshInterval bounds how often an unknown kid may trigger a refetch.
	DefaultMinRefreshInterval = 5 * time.Minute

	// DefaultFailureBackoff bounds how often a failed fetch is retried.
	DefaultFailureBackoff = 10 * time.Second

	fetchTimeout = 10 * time.Second
)

var ErrKeyFetch = errors.New("jwtx: failed to fetch JWKS")

// KeyResolver resolves a verification key by kid.
type KeyResolver interface {
	Key(ctx context.Context, kid string) (any, error)
}

// RemoteKeySet lazily fetches a JWKS document on first use and keeps it in a
// KeySet. A lookup miss refetches at most once per MinRefresh interval so a
// provider key rotation is picked up without hammering the endpoint. A failed
// fetch only holds off retries for FailureBackoff.
type RemoteKeySet struct {
	URL            string
	Client         *http.Client
	MinRefresh     time.Duration
	FailureBackoff time.Duration

	keys *KeySet
	now  func() time.Time

	mu          sync.Mutex // serialises fetches
	fetched     bool
	lastFetch   time.Time
	lastFailure time.Time
}

// NewRemoteKeySet creates a key source for the given JWKS URL.
func NewRemoteKeySet(jwksURL string, client *http.Client) *RemoteKeySet {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &RemoteKeySet{
		URL:            jwksURL,
		Client:         client,
		MinRefresh:     DefaultMinRefreshInterval,
		FailureBackoff: DefaultFailureBackoff,
		keys:           NewKeySet(),
		now:            time.Now,
	}
}

// Key returns the key for kid, fetching the JWKS if it has never been loaded
// or if kid is unknown and the refresh interval has elapsed.
func (r *RemoteKeySet) Key(ctx context.Context, kid string) (any, error) {
	if key, err := r.keys.Get(kid); err == nil {
		return key, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have refreshed while we waited.
	if key, err := r.keys.Get(kid); err == nil {
		return key, nil
	}
	now := r.now()
	if r.fetched && now.Sub(r.lastFetch) < r.MinRefresh {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKID, kid)
	}
	if r.backingOff(now) {
		return nil, fmt.Errorf("%w: retry after %s", ErrKeyFetch, r.FailureBackoff)
	}

	if err := r.refresh(ctx); err != nil {
		return nil, err
	}

	key, err := r.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKID, kid)
	}
	return key, nil
}

// Prefetch loads the JWKS unless a fetch succeeded within MinRefresh.
func (r *RemoteKeySet) Prefetch(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.fetched && now.Sub(r.lastFetch) < r.MinRefresh {
		return nil
	}
	if r.backingOff(now) {
		if r.keys.IsReady() {
			return nil
		}
		return fmt.Errorf("%w: retry after %s", ErrKeyFetch, r.FailureBackoff)
	}
	return r.refresh(ctx)
}

// Ready reports whether a JWKS has been loaded successfully.
func (r *RemoteKeySet) Ready() bool {
	return r.keys.IsReady()
}

func (r *RemoteKeySet) backingOff(now time.Time) bool {
	return !r.lastFailure.IsZero() && now.Sub(r.lastFailure) < r.FailureBackoff
}

// refresh must be called with r.mu held. The fetch outlives the caller's
// context so one cancelled request cannot leave the key set empty.
func (r *RemoteKeySet) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	defer cancel()

	if err := r.fetch(ctx); err != nil {
		r.lastFailure = r.now()
		return err
	}
	r.fetched = true
	r.lastFetch = r.now()
	r.lastFailure = time.Time{}
	return nil
}

func (r *RemoteKeySet) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", ErrKeyFetch, resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&jwks); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrKeyFetch, err)
	}

	if err := r.keys.ResetFromJWKS(jwks); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyFetch, err)
	}
	return nil
}
