// Package cache provides pluggable byte caches for fetched spreadsheet data.
//
// The generate pipeline downloads sheet CSV exports over HTTP; callers can
// avoid repeated downloads by supplying a Cache. Three implementations are
// provided:
//
//   - FileCache: directory-backed, used by the CLI (XDG cache dir)
//   - RedisCache: shared cache for server deployments
//   - NullCache: no-op, used with --no-cache and in tests
//
// Keys are opaque strings; use [Key] to derive a collision-safe key from the
// source URL.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache stores raw byte payloads with optional expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrCacheMiss is returned by helpers that treat a miss as an error.
var ErrCacheMiss = errors.New("cache miss")

// DefaultTTL is the expiration applied to fetched sheet data when the caller
// does not choose one. Sheets change rarely during a batch session, but a
// bounded TTL keeps stale rows from surviving forever.
const DefaultTTL = 15 * time.Minute
