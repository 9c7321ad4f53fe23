// Command searcher serves the Quran search API over HTTP.
//
// It loads the Arabic and English corpora with their morphology, ontology
// and stopword resources, builds one in-memory index per language and
// exposes search, question answering, verse lookup and word analysis under
// /api/v1. Redis, PostgreSQL and Kafka are optional: they back the response
// cache, the corpus or analytics snapshots, and the shared analytics stream.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
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
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/expansion"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/tracing"
)

const loadTimeout = 2 * time.Minute

var connectRetry = resilience.RetryConfig{
	MaxAttempts:  5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"languages", cfg.Search.Languages,
		"corpus_source", cfg.Data.CorpusSource,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()

	var pg *postgres.Client
	if cfg.Data.CorpusSource == "postgres" || cfg.Analytics.SnapshotInterval > 0 {
		err := resilience.Retry(ctx, "postgres-connect", connectRetry, func(ctx context.Context) error {
			var err error
			pg, err = postgres.New(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		checker.Register("postgres", health.PingCheck(pg.Ping, cfg.Data.CorpusSource == "postgres"))
		slog.Info("postgres connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}

	var db corpus.Querier
	if pg != nil {
		db = pg.DB
	}
	ds, err := resilience.WithTimeout(ctx, loadTimeout, "load-dataset", func(ctx context.Context) (*dataset.Dataset, error) {
		return dataset.Load(ctx, cfg.Data, db)
	})
	if err != nil {
		slog.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	engines, err := ds.Engines(cfg.Search.Languages, expansion.FromConfig(cfg.Expansion))
	if err != nil {
		slog.Error("failed to build engines", "error", err)
		os.Exit(1)
	}
	checker.Register("dataset", health.StaticCheck(func() bool { return ds.Arabic.Len() > 0 },
		fmt.Sprintf("%d engines loaded", len(engines))))

	var queryCache *cache.Cache
	if cfg.Cache.Enabled {
		var redisClient *pkgredis.Client
		var breaker *resilience.CircuitBreaker
		if cfg.Cache.Backend == "redis" {
			err := resilience.Retry(ctx, "redis-connect", connectRetry, func(context.Context) error {
				var err error
				redisClient, err = pkgredis.NewClient(cfg.Redis)
				return err
			})
			if err != nil {
				slog.Warn("redis unavailable, falling back to in-memory cache", "error", err)
			} else {
				defer redisClient.Close()
				breaker = resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
					OnStateChange: func(name string, _, to resilience.State) {
						m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
					},
				})
				m.CircuitBreakerState.WithLabelValues(breaker.Name()).Set(float64(breaker.State()))
				checker.Register("redis", health.PingCheck(redisClient.Ping, false))
			}
		}
		store, err := cache.NewStore(cfg.Cache, redisClient, breaker)
		if err != nil {
			slog.Error("failed to create cache store", "error", err)
			os.Exit(1)
		}
		queryCache = cache.New(store, cfg.Cache.TTL, m)
		slog.Info("search cache enabled", "backend", store.Name(), "ttl", cfg.Cache.TTL)
	}

	var aggregator *analytics.Aggregator
	var snapshots *analytics.Store
	var tracker service.Tracker
	if cfg.Analytics.Enabled {
		aggregator = analytics.NewAggregator(cfg.Analytics.TopN)

		var publisher kafka.Publisher
		if cfg.Kafka.Enabled {
			producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
			defer producer.Close()
			publisher = producer
			slog.Info("analytics events published to kafka", "topic", cfg.Kafka.Topics.SearchEvents)
		}

		// With a kafka source the consumer feeds the aggregator, so the
		// collector only publishes.
		var recorder analytics.Recorder = aggregator
		if cfg.Analytics.Source == "kafka" {
			recorder = nil
			consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents, analytics.HandleEvent(aggregator))
			go func() {
				if err := consumer.Start(ctx); err != nil {
					slog.Error("analytics consumer error", "error", err)
				}
			}()
			slog.Info("analytics aggregated from kafka", "group", cfg.Kafka.ConsumerGroup)
		}

		collector := analytics.NewCollector(recorder, publisher, analytics.CollectorOptions{
			BufferSize:    cfg.Analytics.BufferSize,
			BatchSize:     cfg.Analytics.BatchSize,
			FlushInterval: cfg.Analytics.FlushInterval,
			Dropped:       m.AnalyticsDroppedTotal,
		})
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector

		if cfg.Analytics.SnapshotInterval > 0 && pg != nil {
			snapshots = analytics.NewStore(pg.DB)
			if err := snapshots.EnsureSchema(ctx); err != nil {
				slog.Error("failed to prepare analytics snapshots", "error", err)
				os.Exit(1)
			}
			go snapshots.Run(ctx, aggregator, cfg.Analytics.SnapshotInterval)
			slog.Info("analytics snapshots enabled", "interval", cfg.Analytics.SnapshotInterval)
		}
	}

	svc, err := service.New(engines, service.Options{
		Cache:        queryCache,
		Tracker:      tracker,
		Metrics:      m,
		Tracer:       tracing.NewTracer(cfg.Tracing.Enabled),
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
		AnswerLimit:  cfg.Search.AnswerLimit,
	})
	if err != nil {
		slog.Error("failed to create search service", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handler.New(svc).Register(mux)
	if aggregator != nil {
		analyticsH := analytics.NewHandler(aggregator, snapshots)
		mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
		mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsH.Snapshots)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	if cfg.RateLimit.Enabled {
		// validated by config.Load
		trusted, _ := cfg.RateLimit.TrustedPrefixes()
		limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go limiter.Run(ctx, cfg.RateLimit.Window)
		chain = middleware.RateLimit(limiter, trusted)(chain)
	}
	chain = middleware.CORS(cfg.Server.CORSOrigins)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	var shutdownMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		shutdownMetrics, err = metrics.StartServer(cfg.Metrics.Port, m)
		if err != nil {
			slog.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
	}

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
		if shutdownMetrics != nil {
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
