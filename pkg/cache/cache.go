// Package cache provides byte-level caching for repository responses and
// resolved descriptors.
//
// Three backends implement Cache:
//   - FileCache: one JSON entry per key under a directory, for the CLI
//   - RedisCache: shared cache for several artgraph instances (serve)
//   - NullCache: disables caching (--no-cache)
//
// Keys are built by a Keyer so that every caller agrees on the layout:
//
//	k := cache.NewDefaultKeyer()
//	c.Set(ctx, k.HTTPKey("central:", url), body, 24*time.Hour)
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time to live.
type Cache interface {
	// Get returns the value for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key of a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// DescriptorKey is the key of an effective (parent-merged,
	// interpolated) descriptor of coordinate in repository repo.
	DescriptorKey(repo, coordinate string) string

	// MetadataKey is the key of the version listing of group:artifact.
	MetadataKey(repo, ga string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// DescriptorKey hashes the repository and coordinate.
func (DefaultKeyer) DescriptorKey(repo, coordinate string) string {
	return hashKey("descriptor", repo, coordinate)
}

// MetadataKey hashes the repository and group:artifact.
func (DefaultKeyer) MetadataKey(repo, ga string) string {
	return hashKey("metadata", repo, ga)
}
