// Package cache stores the byte payloads of finished jobs so that repeating a
// seeded expansion or augmentation can skip the work.
//
// # Backends
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps entries as files under a directory, for CLI use
//   - [RedisCache] shares entries between processes through Redis
//
// # Keys
//
// A [Keyer] derives keys from the hash of the job's input and the options
// that influence its output. [ScopedKeyer] prefixes every key so several
// tenants can share one backend.
//
//	k := cache.NewDefaultKeyer()
//	key := k.ExpandKey(cache.Hash(csv), cache.ExpandKeyOpts{Rows: 1000, Seed: 7})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Default time-to-live per payload kind.
const (
	TTLExpand  = 7 * 24 * time.Hour
	TTLAugment = 24 * time.Hour
)
