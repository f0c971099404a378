// Package redis is a KV driver for deployments that run several gateway
// instances against one shared store.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/mappmcp/internal/gateway/store"
	"github.com/redis/go-redis/v9"
)

type KV struct {
	client *redis.Client
}

// NewKV connects using a redis:// or rediss:// URL.
func NewKV(url string) (*KV, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &KV{client: redis.NewClient(opts)}, nil
}

// NewKVFromClient wraps an existing client.
func NewKVFromClient(client *redis.Client) *KV {
	return &KV{client: client}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := k.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	return v, err
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	return k.client.Set(ctx, key, value, 0).Err()
}

func (k *KV) Del(ctx context.Context, key string) error {
	return k.client.Del(ctx, key).Err()
}

func (k *KV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := k.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (k *KV) Ping(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}

func (k *KV) Close() error {
	return k.client.Close()
}
