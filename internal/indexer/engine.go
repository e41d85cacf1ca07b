// Package indexer owns the lifecycle of the in-memory inverted index: it
// analyzes incoming articles, applies Add/Remove to the index, restores the
// newest checkpoint on startup, and writes fresh checkpoints on a timer and
// on shutdown.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arefin-labs/clir-engine/internal/analyzer"
	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/indexer/checkpoint"
	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
)

// Engine wraps the inverted index with analysis and persistence. All methods
// are safe for concurrent use; the index's own lock is the only
// synchronization.
type Engine struct {
	idx     *index.Inverted
	writer  *checkpoint.Writer
	cfg     config.IndexConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine creates an Engine and restores the newest valid checkpoint from
// the data directory, if any. A missing or empty directory is a cold start,
// not an error. metrics may be nil in tests.
func NewEngine(cfg config.IndexConfig, m *metrics.Metrics) (*Engine, error) {
	e := &Engine{
		idx:     index.New(),
		writer:  checkpoint.NewWriter(cfg.DataDir),
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}

	entries, docs, name, err := checkpoint.Latest(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning checkpoints: %w", err)
	}
	if name != "" {
		e.idx.Restore(entries, docs)
		stats := e.idx.Stats()
		e.logger.Info("restored index from checkpoint",
			"checkpoint", name,
			"documents", stats.Documents,
			"terms", stats.Terms,
		)
	} else {
		e.logger.Info("no checkpoint found, starting with empty index")
	}
	e.setGauge()
	return e, nil
}

// Index returns the underlying inverted index for read-side consumers.
func (e *Engine) Index() *index.Inverted {
	return e.idx
}

// IndexArticle analyzes the article text with its language's analyzer and
// adds it to the index. A duplicate identifier fails with
// ErrDuplicateDocument; re-indexing an updated article requires a Remove
// first.
func (e *Engine) IndexArticle(docID, title, body, lang string) error {
	an, err := analyzer.For(lang)
	if err != nil {
		return err
	}
	text := title + "\n" + body
	doc := index.Document{
		ID:     docID,
		Lang:   lang,
		Tokens: an.Analyze(text),
	}
	if err := e.idx.Add(doc); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.WithLabelValues(lang).Inc()
	}
	e.setGauge()
	e.logger.Debug("article indexed",
		"doc_id", docID,
		"language", lang,
		"tokens", len(doc.Tokens),
	)
	return nil
}

// RemoveArticle deletes the document's postings from the index.
func (e *Engine) RemoveArticle(docID string) error {
	if err := e.idx.Remove(docID); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.DocsRemovedTotal.Inc()
	}
	e.setGauge()
	e.logger.Debug("article removed", "doc_id", docID)
	return nil
}

// Checkpoint writes a full snapshot of the index and prunes old files. An
// empty index is skipped, not an error.
func (e *Engine) Checkpoint() error {
	entries, docs := e.idx.Snapshot()
	if len(docs) == 0 {
		return nil
	}
	name, err := e.writer.Write(entries, docs)
	if err != nil {
		if e.metrics != nil {
			e.metrics.CheckpointsTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if e.metrics != nil {
		e.metrics.CheckpointsTotal.WithLabelValues("ok").Inc()
	}
	if err := e.writer.Prune(e.cfg.KeepCheckpoints); err != nil {
		e.logger.Warn("pruning old checkpoints failed", "error", err)
	}
	e.logger.Info("checkpoint written",
		"checkpoint", name,
		"documents", len(docs),
		"terms", len(entries),
	)
	return nil
}

// StartCheckpointLoop writes checkpoints on the configured interval until
// ctx is cancelled, then writes a final checkpoint.
func (e *Engine) StartCheckpointLoop(ctx context.Context) {
	interval := e.cfg.CheckpointInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				e.logger.Info("checkpoint loop stopping, writing final checkpoint")
				if err := e.Checkpoint(); err != nil {
					e.logger.Error("final checkpoint failed", "error", err)
				}
				return
			case <-ticker.C:
				if err := e.Checkpoint(); err != nil {
					e.logger.Error("periodic checkpoint failed", "error", err)
				}
			}
		}
	}()
}

// Close writes a final checkpoint.
func (e *Engine) Close() error {
	return e.Checkpoint()
}

func (e *Engine) setGauge() {
	if e.metrics != nil {
		e.metrics.IndexDocuments.Set(float64(e.idx.DocCount()))
	}
}
