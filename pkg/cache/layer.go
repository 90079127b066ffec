// Package cache holds the response cache layers used by the caching
// transport in package chain. Layers store raw JSON response bodies keyed by
// request (see RequestKey).
package cache

import (
	"context"
	"time"
)

// Layer is one tier of the response cache. Implementations must be safe
// for concurrent use.
type Layer interface {
	// Get returns a copy of the body stored under key. Misses and expired
	// entries match ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the layer default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete is idempotent.
	Delete(ctx context.Context, key string) error

	// Name labels the layer in logs and metrics, e.g. "L1-memory".
	Name() string

	Close() error
}
