// Package cache stores computed layouts and rendered artifacts.
//
// The pipeline computes a key per stage from the content hash of its input
// and the options that affect its output, so identical requests are served
// from the cache and any change to the map or the options misses.
//
// Three backends are provided: [NullCache] disables caching, [FileCache]
// keeps entries on local disk for the CLI, and [RedisCache] shares entries
// between API instances.
package cache

import (
	"context"
	"time"
)

// TTLs per cached stage.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiration.
//
// Get reports a miss with hit == false and a nil error; errors are reserved
// for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache misses on every Get and drops every Set. It backs --no-cache
// and the "none" backend.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
