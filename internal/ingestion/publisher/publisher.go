// Package publisher persists articles to PostgreSQL and publishes ingest
// and delete events to Kafka for downstream indexing. Document identifiers
// are derived from the article URL, so re-submitting the same page is a
// duplicate rather than a second document.
package publisher

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/arefin-labs/clir-engine/internal/analyzer"
	"github.com/arefin-labs/clir-engine/internal/corpus"
	"github.com/arefin-labs/clir-engine/internal/ingestion"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
	"github.com/arefin-labs/clir-engine/pkg/kafka"
	"github.com/arefin-labs/clir-engine/pkg/postgres"
	"github.com/arefin-labs/clir-engine/pkg/resilience"
)

// Publisher coordinates article persistence and Kafka event production.
type Publisher struct {
	db          *postgres.Client
	ingestTopic *kafka.Producer
	deleteTopic *kafka.Producer
	retryCfg    resilience.RetryConfig
	logger      *slog.Logger
}

// New creates a Publisher with the given database and topic producers.
func New(db *postgres.Client, ingestTopic, deleteTopic *kafka.Producer) *Publisher {
	return &Publisher{
		db:          db,
		ingestTopic: ingestTopic,
		deleteTopic: deleteTopic,
		retryCfg:    resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond},
		logger:      slog.Default().With("component", "publisher"),
	}
}

// Ingest persists the article in PostgreSQL and publishes an IngestEvent.
// The same URL submitted twice fails with ErrDuplicateDocument; the indexer
// owns Add/Remove semantics and never sees the duplicate.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	docID := corpus.HashID(req.URL)
	language := req.Language
	if language == "" {
		if analyzer.IsBanglaText(req.Title+"\n"+req.Body, 0.5) {
			language = analyzer.LangBangla
		} else {
			language = analyzer.LangEnglish
		}
	}

	err := p.db.InTx(ctx, func(tx *sql.Tx) error {
		var inserted string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO documents (id, url, title, language, source, published_at, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')
			ON CONFLICT (id) DO NOTHING
			RETURNING id`,
			docID, req.URL, req.Title, language, nullableString(req.Source), nullableTime(req.PublishedAt)).Scan(&inserted)
		if err == sql.ErrNoRows {
			return apperrors.Newf(apperrors.ErrDuplicateDocument, 409, "document %s already ingested", docID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	event := kafka.Event{
		Key: docID,
		Value: ingestion.IngestEvent{
			DocumentID:  docID,
			Title:       req.Title,
			Body:        req.Body,
			Language:    language,
			Source:      req.Source,
			PublishedAt: req.PublishedAt,
			IngestedAt:  time.Now().UTC(),
		},
	}
	// The row is committed before the publish, so a lost event leaves the
	// document in PENDING where a reconciliation sweep can re-emit it.
	if err := resilience.Retry(ctx, "publish-ingest", p.retryCfg, func() error {
		return p.ingestTopic.Publish(ctx, event)
	}); err != nil {
		p.logger.Error("failed to publish ingest event, document stuck in PENDING",
			"doc_id", docID,
			"error", err,
		)
	}

	return &ingestion.IngestResponse{
		DocumentID: docID,
		Language:   language,
		Status:     "PENDING",
	}, nil
}

// Delete marks the document deleted in PostgreSQL and publishes a
// DeleteEvent so indexers drop its postings. An unknown document fails with
// ErrDocumentNotFound.
func (p *Publisher) Delete(ctx context.Context, docID string) error {
	err := p.db.InTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE documents SET status='DELETED', deleted_at=NOW() WHERE id=$1 AND status <> 'DELETED'`, docID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "document %s not found", docID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	event := kafka.Event{
		Key:   docID,
		Value: ingestion.DeleteEvent{DocumentID: docID, DeletedAt: time.Now().UTC()},
	}
	if err := resilience.Retry(ctx, "publish-delete", p.retryCfg, func() error {
		return p.deleteTopic.Publish(ctx, event)
	}); err != nil {
		p.logger.Error("failed to publish delete event",
			"doc_id", docID,
			"error", err,
		)
	}
	return nil
}

// Status returns the lifecycle status of a document.
func (p *Publisher) Status(ctx context.Context, docID string) (*ingestion.IngestResponse, error) {
	var resp ingestion.IngestResponse
	err := p.db.DB.QueryRowContext(ctx,
		`SELECT id, language, status FROM documents WHERE id=$1`, docID).
		Scan(&resp.DocumentID, &resp.Language, &resp.Status)
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "document %s not found", docID)
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// nullableString converts a Go string to a sql.NullString, treating the
// empty string as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableTime converts a time to sql.NullTime, treating the zero time as
// NULL.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
