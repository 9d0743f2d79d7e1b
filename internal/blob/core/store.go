// Package core holds the object store contract that snapshot persistence
// writes through, independent of any driver.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Store keeps immutable objects under string keys. Keys are create-only:
// a second Put on a taken key fails with ErrExists, and reading a key that
// was never written (or was deleted) fails with ErrNotFound. List is
// ordered by key, which keeps timestamped snapshot names in write order.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// PutOptions travel with an object for its whole life.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info is what a driver knows about a stored object. ETag is unquoted.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	Metadata     map[string]string
	LastModified time.Time
}

// Sentinels matched with errors.Is; drivers wrap them with the key.
var (
	ErrNotFound      = errors.New("blobstore: not found")
	ErrExists        = errors.New("blobstore: already exists")
	ErrUnknownDriver = errors.New("unknown blob driver")
)

// Driver names a backend as it appears in HIVECORE_BLOB_DRIVER.
type Driver string

// Known drivers.
const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// ParseDriver normalizes name. Empty selects the filesystem driver.
func ParseDriver(name string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(name))); d {
	case "":
		return DriverFilesystem, nil
	case DriverFilesystem, DriverS3, DriverMemory:
		return d, nil
	default:
		return "", fmt.Errorf("%w %s", ErrUnknownDriver, name)
	}
}
