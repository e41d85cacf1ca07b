// Package consumer reads ingestion and deletion events from Kafka and
// applies them to the indexing engine. The Kafka topic is the index's source
// of truth: on a cold start the consumer replays the topic from the earliest
// offset, and a checkpoint only shortens that replay.
package consumer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arefin-labs/clir-engine/internal/indexer"
	"github.com/arefin-labs/clir-engine/internal/ingestion"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
	"github.com/arefin-labs/clir-engine/pkg/kafka"
)

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleIngest returns a MessageHandler that analyzes and indexes every
// ingest event. Duplicate documents are logged and skipped rather than
// retried: replay from the earliest offset makes re-delivery routine, and
// the index's Add already rejects the second copy. If db is non-nil, the
// document status is updated from PENDING to INDEXED in PostgreSQL.
func HandleIngest(engine *indexer.Engine, db *sql.DB) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event",
				"error", err,
				"key", string(key),
			)
			return nil
		}

		err = engine.IndexArticle(event.DocumentID, event.Title, event.Body, event.Language)
		switch {
		case errors.Is(err, apperrors.ErrDuplicateDocument):
			logger.Debug("skipping already-indexed document", "doc_id", event.DocumentID)
			return nil
		case err != nil:
			updateDocStatus(ctx, db, event.DocumentID, "FAILED", logger)
			return fmt.Errorf("indexing document %s: %w", event.DocumentID, err)
		}

		updateDocStatus(ctx, db, event.DocumentID, "INDEXED", logger)
		logger.Info("document indexed",
			"doc_id", event.DocumentID,
			"language", event.Language,
		)
		return nil
	}
}

// HandleDelete returns a MessageHandler that removes deleted documents from
// the index. An unknown document is skipped: the delete may replay before
// its ingest, or the document may never have been indexed here.
func HandleDelete(engine *indexer.Engine, db *sql.DB) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DeleteEvent](value)
		if err != nil {
			logger.Error("failed to decode delete event",
				"error", err,
				"key", string(key),
			)
			return nil
		}

		err = engine.RemoveArticle(event.DocumentID)
		switch {
		case errors.Is(err, apperrors.ErrDocumentNotFound):
			logger.Debug("skipping delete for unknown document", "doc_id", event.DocumentID)
			return nil
		case err != nil:
			return fmt.Errorf("removing document %s: %w", event.DocumentID, err)
		}

		logger.Info("document removed from index", "doc_id", event.DocumentID)
		return nil
	}
}

// updateDocStatus updates the document's status and indexed_at timestamp in
// PostgreSQL. If db is nil, the update is silently skipped.
func updateDocStatus(ctx context.Context, db *sql.DB, docID, status string, logger *slog.Logger) {
	if db == nil {
		return
	}
	_, err := db.ExecContext(ctx,
		`UPDATE documents SET status = $1, indexed_at = NOW() WHERE id = $2`,
		status, docID,
	)
	if err != nil {
		logger.Error("failed to update document status",
			"doc_id", docID,
			"status", status,
			"error", err,
		)
	}
}
