package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hivecore/internal/blob/core"
)

func TestFilesystemStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := New(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	info, err := s.Put(ctx, "snapshots/2.json", strings.NewReader(`{"a":1}`), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "snapshots/2.json", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, rc, err := s.Get(ctx, "snapshots/2.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"a":1}` || got.ContentType != "application/json" || got.ETag != info.ETag {
		t.Fatalf("unexpected get %+v %q", got, body)
	}
	head, err := s.Head(ctx, "snapshots/2.json")
	if err != nil || head.Size != 7 {
		t.Fatalf("unexpected head %+v err=%v", head, err)
	}

	_, _ = s.Put(ctx, "snapshots/1.json", strings.NewReader("{}"), core.PutOptions{})
	_, _ = s.Put(ctx, "other.txt", strings.NewReader("z"), core.PutOptions{})
	list, err := s.List(ctx, "snapshots/")
	if err != nil || len(list) != 2 || list[0].Key != "snapshots/1.json" {
		t.Fatalf("unexpected list %+v err=%v", list, err)
	}

	if ok, err := s.Delete(ctx, "snapshots/1.json"); err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Delete(ctx, "snapshots/1.json"); err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "snapshots", "1.json.meta")); !os.IsNotExist(err) {
		t.Fatalf("sidecar should be removed, stat err=%v", err)
	}
}

func TestFilesystemStoreMissingAndInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
	if _, err := s.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Head, got %v", err)
	}
	for _, key := range []string{"", "  ", "../escape", "/abs", "x.meta"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
