// Package tokenstore holds live session tokens. Entries are keyed by the
// token string itself and vanish when their TTL runs out; deleting an entry
// is how a token is revoked.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("tokenstore: not found")
	ErrInvalidTTL = errors.New("tokenstore: ttl must be positive")
)

// Store is the key-value contract the session issuer relies on.
type Store interface {
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes keys and reports how many existed. Callers use the
	// count to decide which of two racing revocations won.
	Delete(ctx context.Context, keys ...string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Sweeper is implemented by stores that need help dropping expired entries.
type Sweeper interface {
	Sweep(now time.Time) int
}
