// Command analytics starts the query-analytics service.
//
// It consumes query events from Kafka, maintains per-language-pair rollups
// (volumes, latency percentiles, untranslatable-query rates), serves them at
// GET /api/v1/analytics, and periodically snapshots them to PostgreSQL.
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

	"github.com/arefin-labs/clir-engine/internal/analytics"
	"github.com/arefin-labs/clir-engine/internal/analytics/aggregator"
	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/health"
	"github.com/arefin-labs/clir-engine/pkg/kafka"
	"github.com/arefin-labs/clir-engine/pkg/logger"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
	"github.com/arefin-labs/clir-engine/pkg/middleware"
	"github.com/arefin-labs/clir-engine/pkg/postgres"
)

const snapshotInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var agg *analytics.Aggregator
	queryConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents,
		func(ctx context.Context, key, value []byte) error {
			return analytics.HandleEvent(agg)(ctx, key, value)
		})
	agg = analytics.NewAggregator(queryConsumer)

	go func() {
		if err := agg.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("aggregator consumer error", "error", err)
		}
	}()
	slog.Info("aggregator consuming query events", "topic", cfg.Kafka.Topics.QueryEvents)

	var store *aggregator.Store
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshot persistence disabled", "error", err)
	} else {
		defer db.Close()
		store = aggregator.NewStore(db)
		if prev, err := store.LatestSnapshot(ctx); err != nil {
			slog.Warn("could not load previous snapshot", "error", err)
		} else if prev != nil {
			slog.Info("previous snapshot found",
				"total_searches", prev.TotalSearches,
				"lang_pairs", len(prev.PerLangPair),
			)
		}
		store.StartPeriodicSave(ctx, agg, snapshotInterval)
	}

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	var stopMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		stopMetrics = metrics.StartServer(cfg.Metrics.Port)
	}

	h := analytics.NewHandler(agg)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	if store != nil {
		mux.HandleFunc("GET /api/v1/analytics/history", store.HistoryHandler())
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
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
		if stopMetrics != nil {
			if err := stopMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("analytics service stopped")
}
