package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"hivecore/internal/infra/persistence/memory"
	"hivecore/internal/infra/persistence/postgres/testutil"
	"hivecore/pkg/domain"
)

func openStub(t *testing.T) (*Store, *sql.DB, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("unexpected driver %q", driverName)
		}
		return db, nil
	})
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, db, conn
}

func TestNewStoreCreatesStateTable(t *testing.T) {
	_, _, conn := openStub(t)
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS state") {
		t.Fatalf("expected state table DDL, got %v", conn.Execs)
	}
}

func TestRunPersistsEveryBucket(t *testing.T) {
	ctx := context.Background()
	store, db, conn := openStub(t)
	err := store.Run(ctx, func(context.Context) error {
		_, err := store.Products().Add(&domain.CatalogueProduct{
			Base:  domain.Base{ID: store.Products().NextID(), Code: "P1"},
			Price: decimal.RequireFromString("12.50"),
		})
		return err
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, bucket := range memory.Buckets() {
		if _, ok := conn.State[bucket]; !ok {
			t.Fatalf("bucket %s not persisted", bucket)
		}
	}

	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	reloaded, err := NewStore(ctx, "postgres://ignored")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	snap := reloaded.ExportState()
	if len(snap.Products) != 1 || !snap.Products[0].Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected reloaded products %+v", snap.Products)
	}
}

func TestPersistFailureRollsBackMemory(t *testing.T) {
	ctx := context.Background()
	store, _, conn := openStub(t)
	conn.FailBuckets = map[string]bool{memory.BucketHives: true}
	err := store.Run(ctx, func(context.Context) error {
		_, err := store.Hives().Add(&domain.StoreHive{Base: domain.Base{ID: 1, Code: "H1"}})
		return err
	})
	if err == nil || !strings.Contains(err.Error(), "upsert hives") {
		t.Fatalf("expected upsert failure, got %v", err)
	}
	if n := len(store.ExportState().Hives); n != 0 {
		t.Fatalf("memory state should roll back, got %d hives", n)
	}

	conn.FailBuckets = nil
	conn.FailCommit = true
	if err := store.Run(ctx, func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected commit failure")
	}
}

func TestNewStoreErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		setup func(*testutil.StubConn)
	}{
		{name: "ping", setup: func(c *testutil.StubConn) { c.FailPing = true }},
		{name: "query", setup: func(c *testutil.StubConn) { c.FailQuery = true }},
		{name: "rows", setup: func(c *testutil.StubConn) {
			c.State["hives"] = []byte(`[]`)
			c.RowsErr = errors.New("broken cursor")
		}},
		{name: "decode", setup: func(c *testutil.StubConn) { c.State["hives"] = []byte(`{`) }},
		{name: "duplicate ids", setup: func(c *testutil.StubConn) {
			c.State["hives"] = []byte(`[{"id":1},{"id":1}]`)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, conn := testutil.NewStubDB()
			tc.setup(conn)
			restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
			defer restore()
			if _, err := NewStore(ctx, ""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") })
	defer restore()
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}
