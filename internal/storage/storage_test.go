package storage

import (
	"context"
	"path/filepath"
	"testing"

	"hivecore/internal/config"
	"hivecore/pkg/domain"
)

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cases := []struct {
		name string
		cfg  config.Config
	}{
		{name: "memory", cfg: config.Config{Storage: config.StorageConfig{Driver: config.StorageMemory}}},
		{name: "sqlite", cfg: config.Config{Storage: config.StorageConfig{Driver: config.StorageSQLite, SQLitePath: filepath.Join(dir, "hive.db")}}},
		{name: "blob fs", cfg: config.Config{
			Storage: config.StorageConfig{Driver: config.StorageBlob, SnapshotPrefix: "snap/"},
			Blob:    config.BlobConfig{Driver: "fs", FSRoot: filepath.Join(dir, "blobs")},
		}},
		{name: "blob memory", cfg: config.Config{
			Storage: config.StorageConfig{Driver: config.StorageBlob},
			Blob:    config.BlobConfig{Driver: "memory"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend, err := Open(ctx, tc.cfg, nil)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer func() { _ = backend.Close() }()
			err = backend.Run(ctx, func(context.Context) error {
				_, err := backend.Categories().Add(&domain.ProductCategory{Base: domain.Base{ID: backend.Categories().NextID(), Code: "C1"}})
				return err
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if n := len(backend.ExportState().Categories); n != 1 {
				t.Fatalf("expected 1 category, got %d", n)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{Driver: "mongo"}}
	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error")
	}
	cfg = config.Config{Storage: config.StorageConfig{Driver: config.StorageBlob}, Blob: config.BlobConfig{Driver: "tape"}}
	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected blob driver error")
	}
}
