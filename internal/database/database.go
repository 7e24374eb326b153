// internal/database/database.go
package database

import (
	"context"
	"fmt"

	"fedit/internal/config"
)

// KeyValue is the storage capability the store is built on: whole string
// values addressed by key, nothing else.
type KeyValue interface {
	// Get returns the value under key and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// Keys names the three records the store keeps.
type Keys struct {
	Posts   string
	Users   string
	Session string
}

// NewKeys builds the key layout for a prefix. "fedit_" reproduces the
// browser layout; an empty prefix gives the bare names.
func NewKeys(prefix string) Keys {
	return Keys{
		Posts:   prefix + "posts",
		Users:   prefix + "users",
		Session: prefix + "session",
	}
}

// Open connects to the backend selected by cfg.Type.
func Open(ctx context.Context, cfg *config.StorageConfig) (KeyValue, error) {
	switch cfg.Type {
	case config.StorageMemory, "":
		return NewMemoryStore(), nil
	case config.StorageRedis:
		return NewRedisStore(cfg.URI, cfg.RedisPassword, cfg.RedisDB)
	case config.StorageMongoDB:
		return NewMongoStore(ctx, cfg.URI, cfg.MongoDatabase)
	case config.StoragePostgres:
		return NewPostgresStore(ctx, cfg.URI)
	case config.StorageSQLite:
		return NewSQLiteStore(ctx, cfg.URI)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
