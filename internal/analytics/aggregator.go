package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arefin-labs/clir-engine/pkg/kafka"
)

// LangPairStats aggregates query behaviour for one source->target pair.
type LangPairStats struct {
	Searches       int64   `json:"searches"`
	Untranslatable int64   `json:"untranslatable"`
	ZeroResults    int64   `json:"zero_results"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`

	latencySumMs int64
}

type AggregatedStats struct {
	TotalSearches       int64                     `json:"total_searches"`
	CacheHits           int64                     `json:"cache_hits"`
	CacheMisses         int64                     `json:"cache_misses"`
	ZeroResultCount     int64                     `json:"zero_result_count"`
	UntranslatableCount int64                     `json:"untranslatable_count"`
	AvgLatencyMs        float64                   `json:"avg_latency_ms"`
	P50LatencyMs        int64                     `json:"p50_latency_ms"`
	P95LatencyMs        int64                     `json:"p95_latency_ms"`
	P99LatencyMs        int64                     `json:"p99_latency_ms"`
	TopQueries          []QueryCount              `json:"top_queries"`
	ZeroResultQueries   []QueryCount              `json:"zero_result_queries"`
	QueriesPerMinute    float64                   `json:"queries_per_minute"`
	PerLangPair         map[string]*LangPairStats `json:"per_lang_pair"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes query events from Kafka and maintains in-memory
// rollups: overall latency percentiles, top queries, and per-language-pair
// counters. Untranslatable-query rates per pair are the signal the lexicon
// maintainers watch for coverage gaps.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	zeroResults       atomic.Int64
	untranslatable    atomic.Int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	perLangPair       map[string]*LangPairStats
	startTime         time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

func NewAggregator(consumer *kafka.Consumer) *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 10000),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		perLangPair:       make(map[string]*LangPairStats),
		startTime:         time.Now(),
		consumer:          consumer,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

func (a *Aggregator) Start(ctx context.Context) error {
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[QueryEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode query event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Record folds one query event into the rollups.
func (a *Aggregator) Record(event QueryEvent) {
	a.totalSearches.Add(1)

	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}

	untranslatable := event.Type == EventUntranslatable
	if untranslatable {
		a.untranslatable.Add(1)
	}
	zeroResult := !untranslatable && event.TotalHits == 0
	if zeroResult {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if zeroResult {
		a.zeroResultQueries[event.Query]++
	}
	pair := a.perLangPair[event.LangPair]
	if pair == nil {
		pair = &LangPairStats{}
		a.perLangPair[event.LangPair] = pair
	}
	pair.Searches++
	pair.latencySumMs += event.LatencyMs
	if untranslatable {
		pair.Untranslatable++
	}
	if zeroResult {
		pair.ZeroResults++
	}
	a.mu.Unlock()
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:       a.totalSearches.Load(),
		CacheHits:           a.cacheHits.Load(),
		CacheMisses:         a.cacheMisses.Load(),
		ZeroResultCount:     a.zeroResults.Load(),
		UntranslatableCount: a.untranslatable.Load(),
		PerLangPair:         make(map[string]*LangPairStats, len(a.perLangPair)),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	for pairKey, pair := range a.perLangPair {
		copied := *pair
		if copied.Searches > 0 {
			copied.AvgLatencyMs = float64(copied.latencySumMs) / float64(copied.Searches)
		}
		stats.PerLangPair[pairKey] = &copied
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
