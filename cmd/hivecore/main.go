// Command hivecore runs the store-hive and product-catalogue services: it
// opens the configured storage backend, optionally applies a YAML seed
// fixture, publishes change events and serves Prometheus metrics until
// interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hivecore/internal/config"
	"hivecore/internal/events"
	"hivecore/internal/infra/messaging/kafka"
	"hivecore/internal/mapping"
	"hivecore/internal/observability"
	"hivecore/internal/seed"
	"hivecore/internal/service"
	"hivecore/internal/storage"
)

var exitFunc = os.Exit

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	exitFunc(code)
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hivecore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "optional YAML config file; HIVECORE_* variables override it")
	fs.StringVar(&opts.seedPath, "seed", "", "YAML fixture applied through the services at startup")
	fs.BoolVar(&opts.once, "once", false, "exit after startup and seeding instead of serving")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(ctx, opts, stdout); err != nil {
		_, _ = fmt.Fprintf(stderr, "hivecore: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	configPath string
	seedPath   string
	once       bool
}

func run(ctx context.Context, opts options, stdout io.Writer) (err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close storage: %w", cerr)
		}
	}()

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		p, err := kafka.New(cfg.Kafka)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := p.Close(); cerr != nil {
				logger.Warn("close kafka publisher", zap.Error(cerr))
			}
		}()
		publisher = p
	}

	svc := newServices(backend, logger, metrics, publisher)
	logger.Info("hivecore started",
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("kafka", cfg.Kafka.Enabled()),
	)

	if opts.seedPath != "" {
		fx, err := seed.LoadFile(opts.seedPath)
		if err != nil {
			return err
		}
		counts, err := seed.Apply(ctx, fx, svc)
		if err != nil {
			return err
		}
		logger.Info("seed applied",
			zap.Int("hives", counts.Hives),
			zap.Int("sections", counts.Sections),
			zap.Int("categories", counts.Categories),
			zap.Int("products", counts.Products),
		)
		_, _ = fmt.Fprintf(stdout, "seeded %d hives, %d sections, %d categories, %d products\n",
			counts.Hives, counts.Sections, counts.Categories, counts.Products)
	}

	if opts.once || cfg.Metrics.Addr == "" {
		if !opts.once {
			<-ctx.Done()
		}
		return nil
	}
	return serve(ctx, cfg.Metrics, newRouter(registry), logger)
}

func newServices(backend storage.Backend, logger *zap.Logger, metrics *observability.Metrics, publisher events.Publisher) seed.Services {
	mapper := mapping.Default()
	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithMetrics(metrics),
		service.WithPublisher(publisher),
	}
	return seed.Services{
		Hives:      service.NewHiveService(backend, mapper, opts...),
		Sections:   service.NewHiveSectionService(backend, mapper, opts...),
		Categories: service.NewProductCategoryService(backend, mapper, opts...),
		Products:   service.NewProductCatalogueService(backend, mapper, opts...),
	}
}

func newRouter(registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	return r
}

func serve(ctx context.Context, cfg config.MetricsConfig, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	errs := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", zap.String("addr", cfg.Addr))
		errs <- srv.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("hivecore stopped")
	return nil
}
