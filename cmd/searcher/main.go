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

	"github.com/arefin-labs/clir-engine/internal/analytics"
	"github.com/arefin-labs/clir-engine/internal/indexer"
	"github.com/arefin-labs/clir-engine/internal/indexer/consumer"
	"github.com/arefin-labs/clir-engine/internal/lexicon"
	"github.com/arefin-labs/clir-engine/internal/pipeline"
	"github.com/arefin-labs/clir-engine/internal/retrieval"
	"github.com/arefin-labs/clir-engine/internal/searcher/cache"
	"github.com/arefin-labs/clir-engine/internal/searcher/handler"
	"github.com/arefin-labs/clir-engine/internal/translate"
	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/health"
	"github.com/arefin-labs/clir-engine/pkg/kafka"
	"github.com/arefin-labs/clir-engine/pkg/logger"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
	"github.com/arefin-labs/clir-engine/pkg/middleware"
	pkgredis "github.com/arefin-labs/clir-engine/pkg/redis"
	"github.com/arefin-labs/clir-engine/pkg/resilience"
)

// The searcher maintains a read replica of the index: it restores the newest
// checkpoint and then follows the document topics under its own consumer
// group. It never checkpoints or touches document status; that is the
// indexer's job.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	m := metrics.New()

	engine, err := indexer.NewEngine(cfg.Index, m)
	if err != nil {
		slog.Error("failed to initialize index engine", "error", err)
		os.Exit(1)
	}

	provider, guard, err := lexicon.Build(cfg.Lexicon, m)
	if err != nil {
		slog.Error("failed to load lexicon", "error", err)
		os.Exit(1)
	}
	slog.Info("lexicon loaded", "backend", cfg.Lexicon.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := lexicon.Verify(ctx, provider); err != nil {
		slog.Error("lexicon verification failed", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	// Follow the document topics to keep the replica current. Rankings must
	// not outlive the postings that produced them, so every applied mutation
	// also drops the query cache.
	replicaCfg := cfg.Kafka
	replicaCfg.ConsumerGroup = cfg.Kafka.ConsumerGroup + "-searcher"
	ingestConsumer := kafka.NewConsumer(replicaCfg, cfg.Kafka.Topics.DocumentIngest,
		invalidating(ctx, queryCache, consumer.HandleIngest(engine, nil)))
	deleteConsumer := kafka.NewConsumer(replicaCfg, cfg.Kafka.Topics.DocumentDelete,
		invalidating(ctx, queryCache, consumer.HandleDelete(engine, nil)))
	go runConsumer(ctx, "ingest-replica", consumer.New(ingestConsumer))
	go runConsumer(ctx, "delete-replica", consumer.New(deleteConsumer))

	queryProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
	defer queryProducer.Close()
	collector := analytics.NewCollector(queryProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("query event collector started", "topic", cfg.Kafka.Topics.QueryEvents)

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		stats := engine.Index().Stats()
		if stats.Documents == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", stats.Documents, stats.Terms),
		}
	})
	checker.Register("lexicon", func(ctx context.Context) health.ComponentHealth {
		m.BreakerState.WithLabelValues("lexicon").Set(float64(guard.State()))
		if guard.State() == resilience.StateOpen {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit breaker open"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	translator := translate.NewTranslator(
		translate.NewResolver(provider),
		translate.IndexIDF(engine.Index()),
	)
	params := retrieval.Params{K1: cfg.Search.BM25K1, B: cfg.Search.BM25B}
	pipe := pipeline.New(translator, engine.Index(), params, logger.WithComponent("pipeline"))

	h := handler.New(pipe, queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
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

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

func runConsumer(ctx context.Context, name string, c *consumer.IndexConsumer) {
	if err := c.Start(ctx); err != nil && ctx.Err() == nil {
		slog.Error("consumer stopped", "consumer", name, "error", err)
	}
}

// invalidating wraps a message handler so every successfully applied index
// mutation also drops the query-result cache.
func invalidating(ctx context.Context, qc *cache.QueryCache, next kafka.MessageHandler) kafka.MessageHandler {
	return func(msgCtx context.Context, key []byte, value []byte) error {
		if err := next(msgCtx, key, value); err != nil {
			return err
		}
		if qc != nil {
			if err := qc.Invalidate(ctx); err != nil {
				slog.Warn("cache invalidation after index mutation failed", "error", err)
			}
		}
		return nil
	}
}
