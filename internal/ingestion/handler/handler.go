package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arefin-labs/clir-engine/internal/ingestion"
	"github.com/arefin-labs/clir-engine/internal/ingestion/publisher"
	"github.com/arefin-labs/clir-engine/internal/ingestion/validator"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
	"github.com/arefin-labs/clir-engine/pkg/logger"
)

type Handler struct {
	publisher *publisher.Publisher
	logger    *slog.Logger
}

func New(pub *publisher.Publisher) *Handler {
	return &Handler{
		publisher: pub,
		logger:    slog.Default().With("component", "ingestion-handler"),
	}
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	var req ingestion.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidateIngestRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.publisher.Ingest(ctx, &req)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		if statusCode >= 500 {
			log.Error("ingestion failed", "error", err, "status_code", statusCode)
		}
		h.writeError(w, statusCode, err.Error())
		return
	}
	log.Info("article ingested",
		"doc_id", resp.DocumentID,
		"language", resp.Language,
	)
	h.writeJSON(w, http.StatusAccepted, resp)
}

// Delete handles DELETE /api/v1/documents/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	docID := strings.TrimPrefix(r.URL.Path, "/api/v1/documents/")
	if docID == "" || strings.Contains(docID, "/") {
		h.writeError(w, http.StatusBadRequest, "missing document id")
		return
	}
	if err := h.publisher.Delete(ctx, docID); err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		if statusCode >= 500 {
			log.Error("delete failed", "error", err, "doc_id", docID)
		}
		h.writeError(w, statusCode, err.Error())
		return
	}
	log.Info("article deleted", "doc_id", docID)
	w.WriteHeader(http.StatusNoContent)
}

// Status handles GET /api/v1/documents/{id}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	docID := strings.TrimPrefix(r.URL.Path, "/api/v1/documents/")
	if docID == "" || strings.Contains(docID, "/") {
		h.writeError(w, http.StatusBadRequest, "missing document id")
		return
	}
	resp, err := h.publisher.Status(r.Context(), docID)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
