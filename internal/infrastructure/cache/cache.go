package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NoopStore never hits. Used when redis is not configured.
type NoopStore struct{}

func (NoopStore) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopStore) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
