package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchEvent(query, pair string, hits int, latencyMs int64, cacheHit bool) QueryEvent {
	typ := EventCacheMiss
	if cacheHit {
		typ = EventCacheHit
	}
	return QueryEvent{
		Type:      typ,
		Query:     query,
		LangPair:  pair,
		TotalHits: hits,
		LatencyMs: latencyMs,
		CacheHit:  cacheHit,
	}
}

func TestLangPair(t *testing.T) {
	assert.Equal(t, "bn->en", LangPair("bn", []string{"en"}))
	assert.Equal(t, "en->bn,en", LangPair("en", []string{"bn", "en"}))
}

func TestRecordAndStats(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Record(searchEvent("বন্যা", "bn->en", 12, 10, false))
	agg.Record(searchEvent("বন্যা", "bn->en", 12, 2, true))
	agg.Record(searchEvent("dhaka flood", "en->bn", 3, 30, false))

	stats := agg.Stats()
	assert.Equal(t, int64(3), stats.TotalSearches)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(2), stats.CacheMisses)
	assert.Equal(t, int64(0), stats.ZeroResultCount)
	assert.InDelta(t, 14.0, stats.AvgLatencyMs, 1e-9)

	require.Contains(t, stats.PerLangPair, "bn->en")
	bnEn := stats.PerLangPair["bn->en"]
	assert.Equal(t, int64(2), bnEn.Searches)
	assert.InDelta(t, 6.0, bnEn.AvgLatencyMs, 1e-9)

	require.Contains(t, stats.PerLangPair, "en->bn")
	assert.Equal(t, int64(1), stats.PerLangPair["en->bn"].Searches)
}

// Untranslatable queries and zero-result queries are distinct signals: the
// first is a lexicon coverage gap, the second a corpus gap. One event must
// never count as both.
func TestRecordSeparatesUntranslatableFromZeroResult(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Record(QueryEvent{
		Type:     EventUntranslatable,
		Query:    "zebra",
		LangPair: "en->bn",
	})
	agg.Record(searchEvent("nonesuch topic", "en->bn", 0, 5, false))

	stats := agg.Stats()
	assert.Equal(t, int64(1), stats.UntranslatableCount)
	assert.Equal(t, int64(1), stats.ZeroResultCount)

	pair := stats.PerLangPair["en->bn"]
	require.NotNil(t, pair)
	assert.Equal(t, int64(2), pair.Searches)
	assert.Equal(t, int64(1), pair.Untranslatable)
	assert.Equal(t, int64(1), pair.ZeroResults)

	require.Len(t, stats.ZeroResultQueries, 1)
	assert.Equal(t, "nonesuch topic", stats.ZeroResultQueries[0].Query)
}

func TestTopQueriesOrdering(t *testing.T) {
	agg := NewAggregator(nil)
	for i := 0; i < 3; i++ {
		agg.Record(searchEvent("বন্যা", "bn->en", 5, 1, false))
	}
	agg.Record(searchEvent("cricket", "en->bn", 5, 1, false))
	agg.Record(searchEvent("budget", "en->bn", 5, 1, false))

	top := agg.Stats().TopQueries
	require.Len(t, top, 3)
	assert.Equal(t, QueryCount{Query: "বন্যা", Count: 3}, top[0])
	// Ties break alphabetically so output is stable.
	assert.Equal(t, "budget", top[1].Query)
	assert.Equal(t, "cricket", top[2].Query)
}

func TestStatsPercentiles(t *testing.T) {
	agg := NewAggregator(nil)
	for i := int64(1); i <= 100; i++ {
		agg.Record(searchEvent("q", "en->bn", 1, i, false))
	}
	stats := agg.Stats()
	assert.Equal(t, int64(51), stats.P50LatencyMs)
	assert.Equal(t, int64(96), stats.P95LatencyMs)
	assert.Equal(t, int64(100), stats.P99LatencyMs)
}

func TestStatsCopiesPairEntries(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Record(searchEvent("q", "en->bn", 1, 10, false))

	first := agg.Stats()
	first.PerLangPair["en->bn"].Searches = 999

	second := agg.Stats()
	assert.Equal(t, int64(1), second.PerLangPair["en->bn"].Searches)
}
