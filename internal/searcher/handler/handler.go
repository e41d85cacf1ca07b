package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arefin-labs/clir-engine/internal/analytics"
	"github.com/arefin-labs/clir-engine/internal/analyzer"
	"github.com/arefin-labs/clir-engine/internal/pipeline"
	"github.com/arefin-labs/clir-engine/internal/searcher"
	"github.com/arefin-labs/clir-engine/internal/searcher/cache"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
	"github.com/arefin-labs/clir-engine/pkg/logger"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
	"github.com/arefin-labs/clir-engine/pkg/middleware"
)

type Handler struct {
	pipeline     *pipeline.Pipeline
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates the search handler. cache, collector, and m may each be nil;
// the handler degrades to uncached, untracked searching.
func New(p *pipeline.Pipeline, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		pipeline:     p,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search. Query parameters:
//
//	q           raw query text (required)
//	source_lang language of q (required)
//	target_lang comma-separated languages to search in; defaults to every
//	            supported language
//	k           maximum results, capped at the configured maximum
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	sourceLang := r.URL.Query().Get("source_lang")
	if sourceLang == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'source_lang' is required")
		return
	}
	targetLangs, err := parseTargetLangs(r.URL.Query().Get("target_lang"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	k := h.defaultLimit
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		k = parsed
	}

	req := pipeline.Request{
		Query:       query,
		SourceLang:  sourceLang,
		TargetLangs: targetLangs,
		K:           k,
	}
	key := cache.Key{Query: query, SourceLang: sourceLang, TargetLangs: targetLangs, K: k}
	langPair := analytics.LangPair(sourceLang, targetLangs)

	compute := func() (*searcher.SearchResult, error) {
		res, err := h.pipeline.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		return &searcher.SearchResult{
			Query:       query,
			SourceLang:  sourceLang,
			TargetLangs: targetLangs,
			Tokens:      res.Tokens,
			Results:     res.Docs,
			Total:       len(res.Docs),
			TookMS:      res.Elapsed.Milliseconds(),
		}, nil
	}

	var result *searcher.SearchResult
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, key, compute)
	} else {
		result, err = compute()
	}

	latencyMs := time.Since(start).Milliseconds()
	if err != nil {
		h.observeFailure(ctx, req, langPair, latencyMs, err)
		statusCode := apperrors.HTTPStatusCode(err)
		if statusCode >= 500 {
			log.Error("search failed", "query", query, "lang_pair", langPair, "error", err)
		} else {
			log.Info("search rejected", "query", query, "lang_pair", langPair, "error", err)
		}
		h.writeError(w, statusCode, err.Error())
		return
	}
	result.Cached = cacheHit

	h.observeSuccess(langPair, latencyMs, cacheHit, result)
	log.Info("search completed",
		"query", query,
		"lang_pair", langPair,
		"returned", result.Total,
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		h.collector.Track(analytics.QueryEvent{
			Type:        eventType,
			Query:       query,
			SourceLang:  sourceLang,
			TargetLangs: targetLangs,
			LangPair:    langPair,
			TotalHits:   result.Total,
			Returned:    len(result.Results),
			LatencyMs:   latencyMs,
			CacheHit:    cacheHit,
			Timestamp:   time.Now().UTC(),
			RequestID:   middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) observeSuccess(langPair string, latencyMs int64, cacheHit bool, result *searcher.SearchResult) {
	if h.metrics == nil {
		return
	}
	h.metrics.SearchesTotal.WithLabelValues(langPair, "ok").Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(float64(latencyMs) / 1000)
	h.metrics.SearchResultsCount.Observe(float64(result.Total))
}

func (h *Handler) observeFailure(ctx context.Context, req pipeline.Request, langPair string, latencyMs int64, err error) {
	untranslatable := errors.Is(err, apperrors.ErrUntranslatableQuery)
	if h.metrics != nil {
		outcome := "error"
		if untranslatable {
			outcome = "untranslatable"
			h.metrics.UntranslatableTotal.WithLabelValues(langPair).Inc()
		}
		h.metrics.SearchesTotal.WithLabelValues(langPair, outcome).Inc()
	}
	if h.collector != nil && untranslatable {
		h.collector.Track(analytics.QueryEvent{
			Type:        analytics.EventUntranslatable,
			Query:       req.Query,
			SourceLang:  req.SourceLang,
			TargetLangs: req.TargetLangs,
			LangPair:    langPair,
			LatencyMs:   latencyMs,
			Timestamp:   time.Now().UTC(),
			RequestID:   middleware.GetRequestID(ctx),
		})
	}
}

func parseTargetLangs(raw string) ([]string, error) {
	if raw == "" {
		return []string{analyzer.LangBangla, analyzer.LangEnglish}, nil
	}
	parts := strings.Split(raw, ",")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		lang := strings.TrimSpace(p)
		if lang == "" {
			continue
		}
		if !analyzer.Supported(lang) {
			return nil, fmt.Errorf("unsupported target language %q", lang)
		}
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("target_lang has no valid languages")
	}
	return langs, nil
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
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
