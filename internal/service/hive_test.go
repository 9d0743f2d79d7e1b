package service_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"hivecore/internal/events"
	"hivecore/internal/service"
	"hivecore/pkg/domain"
	"hivecore/pkg/dto"
	"hivecore/pkg/entityset"
)

func TestHiveLifecycleScenarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created := f.hive(t, "H1")
	if created.Code != "H1" || created.ID != 1 || created.Address != "Street H1" {
		t.Fatalf("unexpected created view %+v", created)
	}
	if !created.LastUpdated.Equal(epoch) {
		t.Fatalf("expected stamp %v, got %v", epoch, created.LastUpdated)
	}

	_, err := f.hives.CreateHive(ctx, dto.UpdateHiveRequest{Code: "H1", Name: "dup"})
	expectErr(t, err, domain.ErrConflict)
	if n := f.store.Hives().Len(); n != 1 {
		t.Fatalf("failed create changed the set: len=%d", n)
	}

	_, err = f.hives.GetHive(ctx, 999)
	expectErr(t, err, domain.ErrNotFound)

	if err := f.hives.SetStatus(ctx, created.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	_, err = f.hives.GetHive(ctx, created.ID)
	expectErr(t, err, domain.ErrNotFound)

	if err := f.hives.DeleteHive(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.hives.GetHive(ctx, created.ID)
	expectErr(t, err, domain.ErrNotFound)
	expectErr(t, f.hives.DeleteHive(ctx, created.ID), domain.ErrNotFound)

	want := []events.Action{events.ActionCreated, events.ActionStatusChanged, events.ActionPurged}
	if got := f.actions(); !slices.Equal(got, want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
}

func TestHiveGetReturnsFields(t *testing.T) {
	f := newFixture(t)
	created := f.hive(t, "H7")
	got, err := f.hives.GetHive(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("get returned %+v, created %+v", got, created)
	}
}

func TestHiveDeleteRequiresSoftDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := f.hive(t, "H1")
	expectErr(t, f.hives.DeleteHive(ctx, h.ID), domain.ErrConflict)
	expectErr(t, f.hives.DeleteHive(ctx, 42), domain.ErrNotFound)
	if f.store.Hives().Len() != 1 {
		t.Fatalf("rejected delete removed the row")
	}
}

func TestHiveDeleteRejectsOwnedSections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := f.hive(t, "H1")
	sec := f.section(t, h.ID, "S1")
	if err := f.hives.SetStatus(ctx, h.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	expectErr(t, f.hives.DeleteHive(ctx, h.ID), domain.ErrConflict)

	if err := f.sections.SetStatus(ctx, sec.ID, true); err != nil {
		t.Fatalf("section status: %v", err)
	}
	if err := f.sections.DeleteHiveSection(ctx, sec.ID); err != nil {
		t.Fatalf("section delete: %v", err)
	}
	if err := f.hives.DeleteHive(ctx, h.ID); err != nil {
		t.Fatalf("delete after sections purged: %v", err)
	}
}

func TestHiveSetStatusIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := f.hive(t, "H1")

	f.tick(time.Hour)
	if err := f.hives.SetStatus(ctx, h.ID, true); err != nil {
		t.Fatalf("first set: %v", err)
	}
	once := f.store.ExportState()
	f.tick(time.Hour)
	if err := f.hives.SetStatus(ctx, h.ID, true); err != nil {
		t.Fatalf("second set: %v", err)
	}
	twice := f.store.ExportState()
	if once.Hives[0] != twice.Hives[0] {
		t.Fatalf("repeated soft delete changed state: %+v vs %+v", once.Hives[0], twice.Hives[0])
	}
	if !twice.Hives[0].UpdatedAt.Equal(epoch.Add(time.Hour)) {
		t.Fatalf("unexpected stamp %v", twice.Hives[0].UpdatedAt)
	}

	if err := f.hives.SetStatus(ctx, h.ID, false); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := f.hives.GetHive(ctx, h.ID); err != nil {
		t.Fatalf("restored hive should be visible: %v", err)
	}
	expectErr(t, f.hives.SetStatus(ctx, 77, true), domain.ErrNotFound)
}

func TestHiveUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.hive(t, "A")
	b := f.hive(t, "B")

	f.tick(time.Minute)
	updated, err := f.hives.UpdateHive(ctx, a.ID, dto.UpdateHiveRequest{Code: "A2", Name: "Renamed", Address: "Elsewhere"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != a.ID || updated.Code != "A2" || updated.Name != "Renamed" || updated.Address != "Elsewhere" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.LastUpdated.Equal(epoch.Add(time.Minute)) {
		t.Fatalf("update should restamp, got %v", updated.LastUpdated)
	}

	_, err = f.hives.UpdateHive(ctx, a.ID, dto.UpdateHiveRequest{Code: b.Code})
	expectErr(t, err, domain.ErrConflict)
	if got, _ := f.hives.GetHive(ctx, a.ID); got.Code != "A2" {
		t.Fatalf("failed update changed the row: %+v", got)
	}

	if _, err := f.hives.UpdateHive(ctx, b.ID, dto.UpdateHiveRequest{Code: b.Code, Name: "same code"}); err != nil {
		t.Fatalf("keeping the own code must not conflict: %v", err)
	}

	_, err = f.hives.UpdateHive(ctx, 0, dto.UpdateHiveRequest{Code: "Z"})
	expectErr(t, err, domain.ErrNotFound)
}

func TestHiveCodeOfSoftDeletedRowIsReusable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	old := f.hive(t, "H1")
	if err := f.hives.SetStatus(ctx, old.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	reused := f.hive(t, "H1")
	if reused.ID == old.ID {
		t.Fatalf("identity reused")
	}
}

func TestHiveRestoreSkipsCodeCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	old := f.hive(t, "H1")
	if err := f.hives.SetStatus(ctx, old.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	reused := f.hive(t, "H1")

	// Restoring does not look at other rows, so both end up active.
	if err := f.hives.SetStatus(ctx, old.ID, false); err != nil {
		t.Fatalf("restore: %v", err)
	}
	items, err := f.hives.ListHives(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var active []int
	for _, it := range items {
		if it.Code == "H1" && !it.IsDeleted {
			active = append(active, it.ID)
		}
	}
	if !slices.Equal(active, []int{old.ID, reused.ID}) {
		t.Fatalf("expected both H1 rows active, got %v", active)
	}
	if _, err := f.hives.GetHive(ctx, old.ID); err != nil {
		t.Fatalf("restored hive should be readable: %v", err)
	}

	_, err = f.hives.CreateHive(ctx, dto.UpdateHiveRequest{Code: "H1", Name: "third"})
	expectErr(t, err, domain.ErrConflict)
	_, err = f.hives.UpdateHive(ctx, old.ID, dto.UpdateHiveRequest{Code: "H1", Name: "renamed"})
	expectErr(t, err, domain.ErrConflict)
}

func TestHiveListIncludesSoftDeletedWithCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.hive(t, "A")
	b := f.hive(t, "B")
	f.section(t, a.ID, "S1")
	f.section(t, a.ID, "S2")
	f.section(t, b.ID, "S3")
	if err := f.hives.SetStatus(ctx, b.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}

	items, err := f.hives.ListHives(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []dto.HiveListItem{
		{ID: a.ID, Code: "A", Name: "Hive A", HiveSectionCount: 2},
		{ID: b.ID, Code: "B", Name: "Hive B", IsDeleted: true, HiveSectionCount: 1},
	}
	if !slices.Equal(items, want) {
		t.Fatalf("expected %+v, got %+v", want, items)
	}

	sections, err := f.hives.ListHiveSections(ctx, a.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 2 || sections[0].Code != "S1" || sections[1].Code != "S2" {
		t.Fatalf("unexpected sections %+v", sections)
	}
	_, err = f.hives.ListHiveSections(ctx, 99)
	expectErr(t, err, domain.ErrNotFound)
}

func TestHiveIdentityNeverReused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := f.hive(t, "H1")
	if err := f.hives.SetStatus(ctx, h.ID, true); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := f.hives.DeleteHive(ctx, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.hives.CreateHive(ctx, dto.UpdateHiveRequest{Code: "H1"}); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	_, err := f.hives.CreateHive(ctx, dto.UpdateHiveRequest{Code: "H1"})
	expectErr(t, err, domain.ErrConflict)
	next := f.hive(t, "H2")
	if next.ID != 3 {
		t.Fatalf("expected id 3 after a purge and a rejected create, got %d", next.ID)
	}
}

func TestHiveCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.hives.CreateHive(ctx, dto.UpdateHiveRequest{Code: "H1"})
	expectErr(t, err, entityset.ErrOperationCancelled)
	_, err = f.hives.ListHives(ctx)
	expectErr(t, err, entityset.ErrOperationCancelled)
	if f.store.Hives().Len() != 0 {
		t.Fatalf("cancelled create must not add rows")
	}
	if len(f.recorder.Events()) != 0 {
		t.Fatalf("cancelled operations must not publish")
	}
}

func TestHiveInstrumentation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.hive(t, "H1")
	_, _ = f.hives.CreateHive(ctx, dto.UpdateHiveRequest{Code: "H1"})
	_, _ = f.hives.GetHive(ctx, 1)

	if n := f.logs.FilterMessage("operation completed").FilterField(zap.String("operation", "create")).Len(); n != 1 {
		t.Fatalf("expected one create completion log, got %d", n)
	}
	rejected := f.logs.FilterMessage("operation rejected").All()
	if len(rejected) != 1 || rejected[0].ContextMap()["outcome"] != "conflict" {
		t.Fatalf("expected one conflict warning, got %+v", rejected)
	}
	if rejected[0].ContextMap()["entity"] != "hive" {
		t.Fatalf("expected entity field, got %+v", rejected[0].ContextMap())
	}

	count, err := testutil.GatherAndCount(f.registry, "hivecore_service_operations_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 outcome series (create ok, create conflict, get ok), got %d", count)
	}
}

func TestHiveServiceDefaults(t *testing.T) {
	f := newFixture(t)
	svc := service.NewHiveService(f.store, nil, service.WithLogger(nil), service.WithPublisher(nil), service.WithTracer(nil), service.WithClock(nil))
	h, err := svc.CreateHive(context.Background(), dto.UpdateHiveRequest{Code: "D", Name: "defaults"})
	if err != nil {
		t.Fatalf("create with defaults: %v", err)
	}
	if h.LastUpdated.IsZero() {
		t.Fatalf("default clock should stamp rows")
	}
}
