package blob

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"hivecore/internal/config"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		cfg  config.BlobConfig
		want Driver
	}{
		{name: "default fs", cfg: config.BlobConfig{FSRoot: filepath.Join(t.TempDir(), "a")}, want: DriverFilesystem},
		{name: "memory", cfg: config.BlobConfig{Driver: "memory"}, want: DriverMemory},
		{name: "s3", cfg: config.BlobConfig{Driver: "s3", S3: config.S3Config{Bucket: "hive", AccessKeyID: "id", SecretAccessKey: "secret"}}, want: DriverS3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if store.Driver() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, store.Driver())
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, config.BlobConfig{Driver: "tape"}); !errors.Is(err, ErrUnknownDriver) || !strings.Contains(err.Error(), "tape") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
	if _, err := Open(ctx, config.BlobConfig{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}
