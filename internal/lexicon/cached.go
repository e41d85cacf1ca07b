package lexicon

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arefin-labs/clir-engine/internal/index"
)

type cacheKey struct {
	term    index.Term
	tgtLang string
}

// Cached memoizes Lookup results in an LRU so that repeated query terms skip
// the backend entirely. Query vocabularies follow a Zipf curve, so even a
// small cache absorbs most lookups. Errors are never cached.
type Cached struct {
	inner Provider
	cache *lru.Cache[cacheKey, []Candidate]
}

// NewCached wraps a provider with an LRU of the given size.
func NewCached(inner Provider, size int) *Cached {
	if size <= 0 {
		size = 4096
	}
	cache, _ := lru.New[cacheKey, []Candidate](size)
	return &Cached{inner: inner, cache: cache}
}

func (c *Cached) Lookup(ctx context.Context, term index.Term, targetLang string) ([]Candidate, error) {
	key := cacheKey{term: term, tgtLang: targetLang}
	if cands, ok := c.cache.Get(key); ok {
		out := make([]Candidate, len(cands))
		copy(out, cands)
		return out, nil
	}
	cands, err := c.inner.Lookup(ctx, term, targetLang)
	if err != nil {
		return nil, err
	}
	stored := make([]Candidate, len(cands))
	copy(stored, cands)
	c.cache.Add(key, stored)
	return cands, nil
}
