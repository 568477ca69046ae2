// Package database stores failing examples keyed by the descriptor that
// produced them, and reloads and revalidates them on later runs.
package database

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/listatree/hypothesis/internal/backend"
	"github.com/listatree/hypothesis/internal/converter"
	"github.com/listatree/hypothesis/internal/descriptor"
	"github.com/listatree/hypothesis/internal/strategy"
)

// Config holds example database configuration. Zero fields get defaults.
type Config struct {
	// Registry resolves converters. Defaults to converter.NewRegistry.
	// Define every custom rule before passing it here: storages keep the
	// converter they were built with, so later rules only reach storages
	// created afterwards.
	Registry *converter.Registry

	// Strategies resolves validators. Defaults to the registry's table.
	Strategies *strategy.Table

	// Backend stores the encoded examples. Defaults to a MemoryBackend.
	Backend backend.Backend

	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// ExampleDatabase hands out one Storage per descriptor shape. Descriptors
// that are structurally equal get the same Storage, however they were built.
type ExampleDatabase struct {
	registry   *converter.Registry
	strategies *strategy.Table
	backend    backend.Backend
	logger     *zap.Logger

	mu       sync.Mutex
	storages map[uint64][]*Storage
}

// New creates an example database
func New(config Config) *ExampleDatabase {
	strategies := config.Strategies
	registry := config.Registry
	if registry == nil {
		registry = converter.NewRegistry(strategies)
	}
	if strategies == nil {
		strategies = registry.Strategies()
	}

	b := config.Backend
	if b == nil {
		b = backend.NewMemoryBackend()
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExampleDatabase{
		registry:   registry,
		strategies: strategies,
		backend:    b,
		logger:     logger,
		storages:   make(map[uint64][]*Storage),
	}
}

// StorageFor returns the storage for d, creating it on first use
func (db *ExampleDatabase) StorageFor(d descriptor.Descriptor) (*Storage, error) {
	fingerprint := descriptor.Fingerprint(d)
	hash := descriptor.Hash(d)

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.storages[hash] {
		if s.fingerprint == fingerprint {
			return s, nil
		}
	}

	conv, err := db.registry.ConverterFor(d)
	if err != nil {
		return nil, err
	}
	strat, err := db.strategies.StrategyFor(d)
	if err != nil {
		return nil, fmt.Errorf("resolving strategy for %s: %w", d, err)
	}

	s := &Storage{
		descriptor:  d,
		fingerprint: fingerprint,
		key:         d.String(),
		converter:   conv,
		strategy:    strat,
		backend:     db.backend,
		logger:      db.logger,
	}
	db.storages[hash] = append(db.storages[hash], s)

	db.logger.Debug("created storage", zap.String("key", s.key), zap.Uint64("hash", hash))
	return s, nil
}

// Registry returns the converter registry
func (db *ExampleDatabase) Registry() *converter.Registry {
	return db.registry
}

// Backend returns the backend examples are stored in
func (db *ExampleDatabase) Backend() backend.Backend {
	return db.backend
}

// Close closes the backend
func (db *ExampleDatabase) Close() error {
	return db.backend.Close()
}
