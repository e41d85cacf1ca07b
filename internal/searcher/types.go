// Package searcher holds the service-level types of the search API.
package searcher

import (
	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/retrieval"
)

// SearchResult is the JSON response of the search endpoint and the value
// stored in the query-result cache. Tokens are the normalized source-language
// terms the query reduced to, so callers can see what was actually searched.
type SearchResult struct {
	Query       string                `json:"query"`
	SourceLang  string                `json:"source_lang"`
	TargetLangs []string              `json:"target_langs"`
	Tokens      []index.Term          `json:"tokens,omitempty"`
	Results     []retrieval.ScoredDoc `json:"results"`
	Total       int                   `json:"total"`
	TookMS      int64                 `json:"took_ms"`
	Cached      bool                  `json:"cached,omitempty"`
}
