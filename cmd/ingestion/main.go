// Command ingestion starts the article ingestion HTTP service.
//
// The service accepts crawled articles via POST /api/v1/documents, validates
// them (including language tag / script agreement), persists metadata to
// PostgreSQL, and publishes events to Kafka for downstream indexing.
// DELETE /api/v1/documents/{id} removes an article from the corpus.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml]
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

	"github.com/arefin-labs/clir-engine/internal/ingestion/handler"
	"github.com/arefin-labs/clir-engine/internal/ingestion/publisher"
	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/kafka"
	"github.com/arefin-labs/clir-engine/pkg/logger"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
	"github.com/arefin-labs/clir-engine/pkg/middleware"
	"github.com/arefin-labs/clir-engine/pkg/postgres"
)

// main loads configuration, connects to PostgreSQL, creates the Kafka
// producers, wires up the ingestion handler, and starts the HTTP server.
// Graceful shutdown is triggered by SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ingestion service", "port", cfg.Server.Port)

	m := metrics.New()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgres")

	ingestProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
	defer ingestProducer.Close()
	deleteProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentDelete)
	defer deleteProducer.Close()
	slog.Info("kafka producers initialized",
		"ingest_topic", cfg.Kafka.Topics.DocumentIngest,
		"delete_topic", cfg.Kafka.Topics.DocumentDelete,
	)

	pub := publisher.New(db, ingestProducer, deleteProducer)
	h := handler.New(pub)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", h.Ingest)
	mux.HandleFunc("GET /api/v1/documents/", h.Status)
	mux.HandleFunc("DELETE /api/v1/documents/", h.Delete)
	mux.HandleFunc("GET /health", h.Health)
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}
