// Package storage opens the entity store backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hivecore/internal/blob"
	"hivecore/internal/config"
	"hivecore/internal/datacontext"
	"hivecore/internal/infra/persistence/memory"
	"hivecore/internal/infra/persistence/objectstore"
	"hivecore/internal/infra/persistence/postgres"
	"hivecore/internal/infra/persistence/sqlite"
)

// Backend serves both data contexts and releases its resources on Close.
type Backend interface {
	datacontext.HiveContext
	datacontext.CatalogueContext
	ExportState() memory.Snapshot
	Close() error
}

type memoryBackend struct{ *memory.Store }

func (memoryBackend) Close() error { return nil }

type objectBackend struct{ *objectstore.Store }

func (objectBackend) Close() error { return nil }

// Open selects a backend from cfg.Driver. Defaults to sqlite when unset.
//
//	memory:   process memory only
//	sqlite:   snapshot table in the file at cfg.SQLitePath
//	postgres: snapshot table reached through cfg.PostgresDSN
//	blob:     JSON snapshot objects under cfg.SnapshotPrefix in the blob store
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := cfg.Storage.Driver
	if driver == "" {
		driver = config.StorageSQLite
	}
	switch driver {
	case config.StorageMemory:
		return memoryBackend{memory.NewStore()}, nil
	case config.StorageSQLite:
		store, err := sqlite.NewStore(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageBlob:
		blobs, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		store, err := objectstore.NewStore(ctx, blobs, cfg.Storage.SnapshotPrefix, objectstore.WithLogger(logger.Named("objectstore")))
		if err != nil {
			return nil, err
		}
		return objectBackend{store}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
