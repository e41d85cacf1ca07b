// Package analytics tracks query behaviour per language pair: volumes,
// latency, cache effectiveness, and how often queries fail to translate.
// Events flow through Kafka so the aggregator can run apart from the
// searcher.
package analytics

import "time"

type EventType string

const (
	EventSearch         EventType = "search"
	EventCacheHit       EventType = "cache_hit"
	EventCacheMiss      EventType = "cache_miss"
	EventUntranslatable EventType = "untranslatable"
	EventZeroResult     EventType = "zero_result"
)

// QueryEvent is one observed search, emitted by the search handler.
type QueryEvent struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	SourceLang  string    `json:"source_lang"`
	TargetLangs []string  `json:"target_langs"`
	LangPair    string    `json:"lang_pair"`
	TotalHits   int       `json:"total_hits"`
	Returned    int       `json:"returned"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id"`
}

// LangPair renders a source/targets pair the way the aggregator buckets it,
// e.g. "bn->en" or "bn->bn,en".
func LangPair(sourceLang string, targetLangs []string) string {
	pair := sourceLang + "->"
	for i, lang := range targetLangs {
		if i > 0 {
			pair += ","
		}
		pair += lang
	}
	return pair
}
