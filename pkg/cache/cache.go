// Package cache stores derived artifacts so repeated renders are cheap.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON envelope per key under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (ruleviz serve behind a balancer)
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys are built by a [Keyer] so that every option that changes the output
// (layout radius, animation timings, render style) lands in the hash.
package cache

import (
	"context"
	"time"
)

// Common TTLs.
const (
	// TTLFeed bounds how long a remote stimulus feed is reused.
	TTLFeed = 24 * time.Hour
	// TTLLayout bounds how long a relaxed layout is reused.
	TTLLayout = 7 * 24 * time.Hour
	// TTLArtifact bounds how long a rendered SVG or PNG is reused.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored bytes and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
