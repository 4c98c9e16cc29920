package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/metromap/pkg/cache"
	"github.com/matzehuels/metromap/pkg/storage"
	"github.com/matzehuels/metromap/pkg/storage/mongostore"
	"github.com/matzehuels/metromap/pkg/storage/neo4jstore"
)

const appName = "metromap"

// OpenCache returns the configured cache backend.
func (c CacheConfig) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.Prefix,
		})
	default:
		dir := c.Dir
		if dir == "" {
			d, err := CacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// OpenStore returns the configured map store. Calls are reported to the
// store hooks under the backend name.
func (s StoreConfig) OpenStore(ctx context.Context) (storage.Store, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	backend := s.Backend
	if backend == "" {
		backend = StoreFile
	}
	return storage.Instrument(st, backend), nil
}

func (s StoreConfig) open(ctx context.Context) (storage.Store, error) {
	switch s.Backend {
	case StoreMemory:
		return storage.NewMemoryStore(), nil
	case StoreMongo:
		return mongostore.New(ctx, mongostore.Config{
			URI:        s.MongoURI,
			Database:   s.MongoDatabase,
			Collection: s.MongoCollection,
		})
	case StoreNeo4j:
		client, err := neo4jstore.NewClient(ctx, neo4jstore.Config{
			URI:      s.Neo4jURI,
			Database: s.Neo4jDatabase,
			Username: s.Neo4jUser,
			Password: s.Neo4jPassword,
		})
		if err != nil {
			return nil, err
		}
		return neo4jstore.New(client), nil
	default:
		return storage.NewFileStore(s.Dir)
	}
}

// CacheDir returns the cache directory using XDG standard (~/.cache/metromap/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
