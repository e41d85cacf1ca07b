// Package ingestion defines the request/response types and Kafka event
// schemas used by the article ingestion pipeline.
package ingestion

import "time"

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
// Language may be left empty, in which case it is inferred from the script
// of the text.
type IngestRequest struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Language    string    `json:"language,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// IngestResponse is returned to the caller after an article is accepted.
type IngestResponse struct {
	DocumentID string `json:"document_id"`
	Language   string `json:"language"`
	Status     string `json:"status"`
}

// IngestEvent is the Kafka message payload produced after an article is
// persisted and ready for indexing.
type IngestEvent struct {
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Language    string    `json:"language"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DeleteEvent is the Kafka message payload produced when an article is
// removed from the corpus.
type DeleteEvent struct {
	DocumentID string    `json:"document_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}
