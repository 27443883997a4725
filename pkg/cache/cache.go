// Package cache stores raw graph source payloads between runs.
//
// Fetching a graph definition over HTTP is the only slow step before the
// animation can start, so [graph.HTTPSource] consults a [Cache] first.
// Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several serve instances
//   - [MongoCache]: shared cache in a MongoDB collection
//
// Keys are produced by [SourceKey]; values are opaque bytes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. Expired or missing
	// entries are reported as a miss with a nil error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
