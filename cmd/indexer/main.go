package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arefin-labs/clir-engine/internal/indexer"
	"github.com/arefin-labs/clir-engine/internal/indexer/consumer"
	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/health"
	"github.com/arefin-labs/clir-engine/pkg/kafka"
	"github.com/arefin-labs/clir-engine/pkg/logger"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
	"github.com/arefin-labs/clir-engine/pkg/postgres"
)

// The indexer owns the index of record: it consumes the document topics,
// applies Add/Remove, updates document status in PostgreSQL, and writes
// periodic checkpoints so restarts replay only the topic tail.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service", "data_dir", cfg.Index.DataDir)

	m := metrics.New()

	engine, err := indexer.NewEngine(cfg.Index, m)
	if err != nil {
		slog.Error("failed to initialize index engine", "error", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, document status updates disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
	}
	var sqlDB *sql.DB
	if db != nil {
		sqlDB = db.DB
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.StartCheckpointLoop(ctx)

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		stats := engine.Index().Stats()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", stats.Documents, stats.Terms),
		}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	if cfg.Metrics.Enabled {
		go serveOps(cfg.Metrics.Port, checker)
	}

	ingestConsumer := consumer.New(kafka.NewConsumer(
		cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, consumer.HandleIngest(engine, sqlDB)))
	deleteConsumer := consumer.New(kafka.NewConsumer(
		cfg.Kafka, cfg.Kafka.Topics.DocumentDelete, consumer.HandleDelete(engine, sqlDB)))

	slog.Info("indexer service ready, consuming from kafka",
		"ingest_topic", cfg.Kafka.Topics.DocumentIngest,
		"delete_topic", cfg.Kafka.Topics.DocumentDelete,
		"group", cfg.Kafka.ConsumerGroup,
	)

	go func() {
		if err := deleteConsumer.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("delete consumer error", "error", err)
		}
	}()
	if err := ingestConsumer.Start(ctx); err != nil && ctx.Err() == nil {
		slog.Error("ingest consumer error", "error", err)
	}

	slog.Info("writing final checkpoint before shutdown")
	if err := engine.Close(); err != nil {
		slog.Error("final checkpoint failed", "error", err)
	}

	slog.Info("indexer service stopped")
}

// serveOps exposes metrics and health probes on the operational port.
func serveOps(port int, checker *health.Checker) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	addr := fmt.Sprintf(":%d", port)
	slog.Info("operational endpoints listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("operational server error", "error", err)
	}
}
