// Package storage persists scrape results to a configured backend.
package storage

import (
	"fmt"
	"log/slog"

	"redscraper/internal/config"
	"redscraper/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of results.
	Store(results []types.Result) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the backend named by the configuration. Type "none" returns
// nil with no error: the caller simply skips storage.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "json":
		return NewJSONStorage(cfg.OutputPath, logger)
	case "jsonl":
		return NewJSONLStorage(cfg.OutputPath, logger)
	case "mongodb":
		return NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
