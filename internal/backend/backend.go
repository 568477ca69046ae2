// Package backend provides the key to multiset-of-strings stores that
// example storage persists into. Every implementation suppresses duplicate
// (key, value) pairs and makes each Save atomic on its own.
package backend

import (
	"context"
	"fmt"
)

// Backend defines the interface for all example stores
type Backend interface {
	// Save records value under key; saving an existing pair is a no-op
	Save(ctx context.Context, key, value string) error

	// Fetch returns every distinct value saved under key, in no
	// particular order
	Fetch(ctx context.Context, key string) ([]string, error)

	// Close releases any resources held by the backend
	Close() error
}

// Backend types understood by Open
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeRedis    = "redis"
)

// Config selects and configures a backend
type Config struct {
	// Type is one of memory, sqlite, postgres or redis. Empty means memory.
	Type string
	// Driver overrides the database/sql driver name for SQL backends
	Driver string
	// Path is the sqlite database file
	Path string
	// URL is the connection string for postgres
	URL string
	// Table is the SQL table holding examples
	Table string
	// Redis holds Redis-specific configuration
	Redis RedisConfig
}

// Open creates the backend described by config
func Open(config Config) (Backend, error) {
	switch config.Type {
	case "", TypeMemory:
		return NewMemoryBackend(), nil
	case TypeSQLite:
		if config.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a path")
		}
		driver := config.Driver
		if driver == "" {
			driver = DriverSQLite3
		}
		return OpenSQL(driver, config.Path, config.Table)
	case TypePostgres:
		if config.URL == "" {
			return nil, fmt.Errorf("postgres backend requires a url")
		}
		driver := config.Driver
		if driver == "" {
			driver = DriverPgx
		}
		return OpenSQL(driver, config.URL, config.Table)
	case TypeRedis:
		return NewRedisBackendWithConfig(config.Redis)
	}
	return nil, fmt.Errorf("unknown backend type %q", config.Type)
}
