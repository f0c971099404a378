package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// KV drivers selectable with KV_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	Env                  string        `env:"ENV"                   envDefault:"dev"`  // dev, staging, prod
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"` // debug, info, warn, error
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"` // json, text
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	PublicBaseURL        string        `env:"PUBLIC_BASE_URL"` // Optional: external origin when behind a proxy
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"5m"`

	// Identity provider. Without domain and audience every bearer token is rejected.
	Auth0Domain               string `env:"AUTH0_DOMAIN"`
	Auth0Audience             string `env:"AUTH0_AUDIENCE"`
	Auth0SettingsClientID     string `env:"AUTH0_SETTINGS_CLIENT_ID"`
	Auth0SettingsClientSecret string `env:"AUTH0_SETTINGS_CLIENT_SECRET,unset"`
	Auth0ActionSecret         string `env:"AUTH0_ACTION_SECRET,unset"` // Optional: enables /api/setup

	// Required: 64 hex characters (32-byte AES key)
	EncryptionKey string `env:"CREDENTIAL_ENCRYPTION_KEY,unset"`

	MappAPIBaseURL string `env:"MAPP_API_BASE_URL"`

	KVDriver       string `env:"KV_DRIVER"        envDefault:"sqlite"`
	KVDatabaseFile string `env:"KV_DATABASE_FILE" envDefault:"mappmcp.db"`
	RedisURL       string `env:"REDIS_URL,unset"`

	UpstreamTimeout        time.Duration `env:"UPSTREAM_TIMEOUT"          envDefault:"30s"`
	TokenCacheMaxEntries   int           `env:"TOKEN_CACHE_MAX_ENTRIES"   envDefault:"1000"`
	TokenCacheSafetyMargin time.Duration `env:"TOKEN_CACHE_SAFETY_MARGIN" envDefault:"60s"`
	TokenDefaultTTL        time.Duration `env:"TOKEN_DEFAULT_TTL"         envDefault:"5m"`
	PollMaxAttempts        int           `env:"POLL_MAX_ATTEMPTS"         envDefault:"30"`
	PollInterval           time.Duration `env:"POLL_INTERVAL"             envDefault:"2s"`
}

var ErrMissingEncryptionKey = errors.New("CREDENTIAL_ENCRYPTION_KEY is required")

// LoadConfig reads the configuration from the environment. Secrets are
// removed from the environment once read.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	if c.EncryptionKey == "" {
		return ErrMissingEncryptionKey
	}
	switch c.KVDriver {
	case DriverSQLite, DriverMemory:
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when KV_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown KV_DRIVER %q (want sqlite, redis or memory)", c.KVDriver)
	}
	if c.PollMaxAttempts <= 0 {
		return fmt.Errorf("POLL_MAX_ATTEMPTS must be positive, got %d", c.PollMaxAttempts)
	}
	return nil
}
