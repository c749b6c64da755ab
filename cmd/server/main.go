package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"personpatch/internal/audit"
	httpapi "personpatch/internal/http"
	"personpatch/internal/person"
	personmetrics "personpatch/internal/person/metrics"
	"personpatch/internal/person/service"
	"personpatch/internal/person/store"
	"personpatch/internal/platform/config"
	"personpatch/internal/platform/httpserver"
	"personpatch/internal/platform/logger"
	"personpatch/internal/platform/metrics"
	"personpatch/internal/platform/postgres"
	"personpatch/internal/platform/redis"
)

const auditBufferSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checks := map[string]httpapi.HealthCheck{}

	personStore, closeStore, err := openStore(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	sink, closeSink, err := openAuditSink(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeSink()

	publisher := audit.NewPublisher(auditBufferSize, log)
	worker := audit.NewWorker(sink, publisher.Inbox(), log)

	svc := person.NewService(personStore,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(personmetrics.New(reg)),
	)
	router := httpapi.NewRouter(httpapi.Options{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Checks:   checks,
	}, person.NewHandler(svc, log))
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting people service",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Backend,
			"kafka", cfg.Kafka.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Exits once the publisher is closed after the HTTP server stops.
		return worker.Run(context.WithoutCancel(gctx))
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout.D())
		defer cancel()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.D().String())
		err := srv.Shutdown(shutdownCtx)
		publisher.Close()
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, checks map[string]httpapi.HealthCheck) (service.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		checks["redis"] = client.Health
		return store.NewRedis(client.Client, store.WithKeyPrefix(cfg.Redis.KeyPrefix)), func() { _ = client.Close() }, nil
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		checks["postgres"] = db.PingContext
		return pg, func() { _ = db.Close() }, nil
	default:
		return store.NewInMemory(), func() {}, nil
	}
}

func openAuditSink(ctx context.Context, cfg config.Config, checks map[string]httpapi.HealthCheck) (audit.Sink, func(), error) {
	if !cfg.Kafka.Enabled() {
		return audit.NewInMemoryStore(), func() {}, nil
	}
	sink, err := audit.NewKafkaSink(ctx, cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	checks["kafka"] = sink.Health
	return sink, sink.Close, nil
}
