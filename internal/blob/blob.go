// Package blob re-exports the core blob abstractions and opens the configured
// driver.
package blob

import (
	"context"
	"fmt"

	"hivecore/internal/blob/core"
	"hivecore/internal/config"
	infrafs "hivecore/internal/infra/blob/fs"
	inframemory "hivecore/internal/infra/blob/memory"
	infras3 "hivecore/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotFound indicates a missing key.
	ErrNotFound = core.ErrNotFound
	// ErrExists indicates a create-only write hit an existing key.
	ErrExists = core.ErrExists
	// ErrUnknownDriver is returned by Open for an unrecognized driver name.
	ErrUnknownDriver = core.ErrUnknownDriver
)

// Open selects a Store implementation from cfg.Driver (fs|s3|memory, default fs).
func Open(ctx context.Context, cfg config.BlobConfig) (Store, error) {
	driver, err := core.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverFilesystem:
		return infrafs.New(cfg.FSRoot)
	case DriverS3:
		return infras3.New(ctx, infras3.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
			PathStyle:       cfg.S3.PathStyle,
		})
	case DriverMemory:
		return inframemory.New(), nil
	default:
		return nil, fmt.Errorf("%w %s", core.ErrUnknownDriver, driver)
	}
}
