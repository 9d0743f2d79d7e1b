package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hivecore/internal/events"
	"hivecore/internal/infra/persistence/memory"
	"hivecore/internal/mapping"
	"hivecore/internal/observability"
	"hivecore/internal/service"
	"hivecore/pkg/dto"
)

var epoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	recorder *events.Recorder
	logs     *observer.ObservedLogs
	metrics  *observability.Metrics
	registry *prometheus.Registry
	clock    *time.Time

	hives      *service.HiveService
	sections   *service.HiveSectionService
	products   *service.ProductCatalogueService
	categories *service.ProductCategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	now := epoch
	f := &fixture{
		store:    memory.NewStore(),
		recorder: &events.Recorder{},
		logs:     logs,
		metrics:  metrics,
		registry: reg,
		clock:    &now,
	}
	mapper := mapping.Default()
	opts := []service.Option{
		service.WithLogger(zap.New(core)),
		service.WithMetrics(metrics),
		service.WithPublisher(f.recorder),
		service.WithClock(func() time.Time { return *f.clock }),
	}
	f.hives = service.NewHiveService(f.store, mapper, opts...)
	f.sections = service.NewHiveSectionService(f.store, mapper, opts...)
	f.products = service.NewProductCatalogueService(f.store, mapper, opts...)
	f.categories = service.NewProductCategoryService(f.store, mapper, opts...)
	return f
}

func (f *fixture) tick(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f *fixture) hive(t *testing.T, code string) dto.Hive {
	t.Helper()
	h, err := f.hives.CreateHive(context.Background(), dto.UpdateHiveRequest{Code: code, Name: "Hive " + code, Address: "Street " + code})
	if err != nil {
		t.Fatalf("create hive %s: %v", code, err)
	}
	return h
}

func (f *fixture) section(t *testing.T, hiveID int, code string) dto.HiveSection {
	t.Helper()
	sec, err := f.sections.CreateHiveSection(context.Background(), dto.UpdateHiveSectionRequest{Code: code, Name: "Section " + code, StoreHiveID: hiveID})
	if err != nil {
		t.Fatalf("create section %s: %v", code, err)
	}
	return sec
}

func (f *fixture) category(t *testing.T, code string) dto.ProductCategory {
	t.Helper()
	c, err := f.categories.CreateCategory(context.Background(), dto.UpdateProductCategoryRequest{Code: code, Name: "Category " + code})
	if err != nil {
		t.Fatalf("create category %s: %v", code, err)
	}
	return c
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func (f *fixture) actions() []events.Action {
	var out []events.Action
	for _, evt := range f.recorder.Events() {
		out = append(out, evt.Action)
	}
	return out
}
