// Command analytics starts the standalone analytics aggregation service.
//
// It consumes search and answer events that searcher replicas publish to
// Kafka, aggregates them in memory (totals, latency percentiles, cache hit
// counts, top and zero-result queries, per-language and per-question-type
// counts) and exposes them at GET /api/v1/analytics. With
// analytics.snapshotInterval set, the figures are also saved to PostgreSQL
// and listed at GET /api/v1/analytics/snapshots.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-port 8081]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	port := flag.Int("port", 0, "listen port, overriding server.port so it can share a config with the searcher")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if !cfg.Kafka.Enabled {
		slog.Error("analytics service needs kafka.enabled")
		os.Exit(1)
	}
	slog.Info("starting analytics service", "port", cfg.Server.Port, "topic", cfg.Kafka.Topics.SearchEvents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator(cfg.Analytics.TopN)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents, analytics.HandleEvent(aggregator))

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Start(ctx)
	}()
	slog.Info("analytics aggregator started", "group", cfg.Kafka.ConsumerGroup)

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		select {
		case err := <-consumerErr:
			consumerErr <- err
			return health.ComponentHealth{Status: health.StatusDown, Message: fmt.Sprintf("consumer stopped: %v", err)}
		default:
			return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
		}
	})

	var snapshots *analytics.Store
	if cfg.Analytics.SnapshotInterval > 0 {
		var pg *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond}, func(ctx context.Context) error {
			var err error
			pg, err = postgres.New(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		checker.Register("postgres", health.PingCheck(pg.Ping, false))

		snapshots = analytics.NewStore(pg.DB)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare analytics snapshots", "error", err)
			os.Exit(1)
		}
		go snapshots.Run(ctx, aggregator, cfg.Analytics.SnapshotInterval)
		slog.Info("analytics snapshots enabled", "interval", cfg.Analytics.SnapshotInterval)
	}

	analyticsHandler := analytics.NewHandler(aggregator, snapshots)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsHandler.Snapshots)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.CORS(cfg.Server.CORSOrigins)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
