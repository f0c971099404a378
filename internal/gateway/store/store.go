package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("store: not found")
	ErrNoIdentity = errors.New("store: identity is required")
)

// KV is the key/value collaborator credentials live in. Concrete drivers
// (sqlite, redis, memory) implement it. Values are opaque bytes; the store
// never interprets them.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Exists reports key presence without reading the value.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Migrator is implemented by drivers that keep a schema.
type Migrator interface {
	ApplyMigrations() error
}

// Checkpointer is implemented by drivers with a log that needs periodic
// compaction.
type Checkpointer interface {
	Checkpoint(ctx context.Context) (int, error)
}
