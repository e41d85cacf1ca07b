// Package metrics defines the Prometheus metric collectors used across the
// retrieval engine and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	SearchesTotal         *prometheus.CounterVec
	SearchLatency         *prometheus.HistogramVec
	SearchResultsCount    prometheus.Histogram
	TranslationCandidates prometheus.Histogram
	UntranslatableTotal   *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	DocsIndexedTotal *prometheus.CounterVec
	DocsRemovedTotal prometheus.Counter
	IndexDocuments   prometheus.Gauge
	CheckpointsTotal *prometheus.CounterVec

	LexiconLookupsTotal *prometheus.CounterVec
	BreakerState        *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clir_searches_total",
				Help: "Total search requests by language pair and outcome (ok, untranslatable, empty_index, dependency_error, error).",
			},
			[]string{"lang_pair", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clir_search_latency_seconds",
				Help:    "End-to-end search latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clir_search_results_count",
				Help:    "Number of results returned per search request.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		TranslationCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clir_translation_candidates",
				Help:    "Number of target-language terms produced per query translation.",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),
		UntranslatableTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clir_untranslatable_queries_total",
				Help: "Queries rejected because no token had a translation.",
			},
			[]string{"lang_pair"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clir_docs_indexed_total",
				Help: "Total documents indexed by language.",
			},
			[]string{"language"},
		),
		DocsRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "clir_docs_removed_total",
				Help: "Total documents removed from the index.",
			},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "clir_index_documents",
				Help: "Documents currently in the inverted index.",
			},
		),
		CheckpointsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clir_index_checkpoints_total",
				Help: "Index checkpoint operations by status.",
			},
			[]string{"status"},
		),
		LexiconLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clir_lexicon_lookups_total",
				Help: "Lexicon lookups by backend and result (hit, miss, error).",
			},
			[]string{"backend", "result"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.TranslationCandidates,
		m.UntranslatableTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocsIndexedTotal,
		m.DocsRemovedTotal,
		m.IndexDocuments,
		m.CheckpointsTotal,
		m.LexiconLookupsTotal,
		m.BreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
