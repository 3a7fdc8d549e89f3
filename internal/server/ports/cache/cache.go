// Package cache defines the caching port used by the note use case.
package cache

import (
	"context"
	"time"
)

// Cache is a string key-value store with TTL. Get returns "" without error on
// a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error
}
