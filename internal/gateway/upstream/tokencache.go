package upstream

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/domain"
	"github.com/aussiebroadwan/mappmcp/internal/gateway/metrics"
	"github.com/aussiebroadwan/mappmcp/pkg/slogx"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

const (
	TokenPath  = "/analytics/api/oauth/token"
	TokenScope = "mapp.intelligence-api"

	DefaultMaxEntries   = 1000
	DefaultSafetyMargin = 60 * time.Second
	DefaultTokenTTL     = 5 * time.Minute
)

// TokenCacheConfig tunes the cache. Zero values select the defaults.
type TokenCacheConfig struct {
	MaxEntries   int
	SafetyMargin time.Duration
	DefaultTTL   time.Duration
}

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

// TokenCache exchanges client credentials for upstream access tokens and
// keeps them until shortly before they expire. Entries are shared by every
// caller presenting the same credential tuple. Concurrent misses on one key
// share a single exchange; different keys never wait on each other's I/O.
type TokenCache struct {
	client *http.Client
	cfg    TokenCacheConfig
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]tokenEntry
	group   singleflight.Group
}

// NewTokenCache creates a cache that performs exchanges with client.
func NewTokenCache(client *http.Client, cfg TokenCacheConfig) *TokenCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.SafetyMargin <= 0 {
		cfg.SafetyMargin = DefaultSafetyMargin
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTokenTTL
	}
	return &TokenCache{
		client:  client,
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]tokenEntry),
	}
}

// CacheKey derives the lookup key for a credential tuple. Fields are length
// prefixed so ("ab","c") and ("a","bc") never collide.
func CacheKey(cred domain.UpstreamCredential) string {
	h, _ := blake2b.New256(nil)
	for _, f := range []string{cred.ClientID, cred.ClientSecret, cred.BaseURL} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(f)))
		h.Write(n[:])
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetToken returns a valid access token for cred, exchanging credentials on
// a miss. Failed exchanges are never cached.
func (c *TokenCache) GetToken(ctx context.Context, cred domain.UpstreamCredential) (string, error) {
	key := CacheKey(cred)

	if tok, ok := c.lookup(key); ok {
		metrics.TokenCacheLookups.WithLabelValues("hit").Inc()
		return tok, nil
	}

	// The exchange is shared, so it must not die with whichever caller
	// started it. Each caller still stops waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A concurrent caller may have filled the entry while we queued.
		if tok, ok := c.lookup(key); ok {
			return tok, nil
		}

		tok, expiresIn, err := c.exchange(shared, cred)
		if err != nil {
			return "", err
		}
		c.insert(key, tok, expiresIn)
		return tok, nil
	})

	var (
		v   any
		err error
	)
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		metrics.TokenCacheLookups.WithLabelValues("error").Inc()
		slogx.FromContext(ctx).Warn("upstream token exchange failed", "cred", cred, "err", err)
		return "", err
	}

	metrics.TokenCacheLookups.WithLabelValues("miss").Inc()
	return v.(string), nil
}

func (c *TokenCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt.Add(-c.cfg.SafetyMargin)) {
		return "", false
	}
	return e.token, true
}

func (c *TokenCache) insert(key, token string, expiresIn time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.pruneLocked(now)
	c.entries[key] = tokenEntry{token: token, expiresAt: now.Add(expiresIn)}

	if over := len(c.entries) - c.cfg.MaxEntries; over > 0 {
		type kv struct {
			key string
			at  time.Time
		}
		all := make([]kv, 0, len(c.entries))
		for k, e := range c.entries {
			all = append(all, kv{k, e.expiresAt})
		}
		slices.SortFunc(all, func(a, b kv) int { return a.at.Compare(b.at) })
		for _, e := range all[:over] {
			delete(c.entries, e.key)
		}
	}

	metrics.TokenCacheEntries.Set(float64(len(c.entries)))
}

// Prune drops entries that have expired by now and returns how many were removed.
func (c *TokenCache) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.pruneLocked(now)
	metrics.TokenCacheEntries.Set(float64(len(c.entries)))
	return n
}

func (c *TokenCache) pruneLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries.
func (c *TokenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   json.RawMessage `json:"expires_in"`
}

// exchange performs the client-credentials grant. The grant parameters go in
// the query string with an empty body, which is what the analytics API expects.
func (c *TokenCache) exchange(ctx context.Context, cred domain.UpstreamCredential) (string, time.Duration, error) {
	endpoint := cred.BaseURL + TokenPath + "?grant_type=client_credentials&scope=" + TokenScope

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return "", 0, &AuthFailure{Body: err.Error()}
	}
	req.SetBasicAuth(cred.ClientID, cred.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, &AuthFailure{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", 0, &AuthFailure{Status: resp.StatusCode, Body: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, &AuthFailure{Status: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return "", 0, &AuthFailure{Status: resp.StatusCode, Body: "token response is missing access_token"}
	}

	return tr.AccessToken, c.lifetime(tr.ExpiresIn), nil
}

// lifetime reads expires_in as a number or numeric string. Anything else,
// including non-positive values, falls back to the configured default.
func (c *TokenCache) lifetime(raw json.RawMessage) time.Duration {
	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return c.cfg.DefaultTTL
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return c.cfg.DefaultTTL
		}
		secs = f
	}
	if secs <= 0 {
		return c.cfg.DefaultTTL
	}
	return time.Duration(secs * float64(time.Second))
}
