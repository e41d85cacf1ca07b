package lexicon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin-labs/clir-engine/internal/index"
)

// countingProvider is a scriptable fake backend.
type countingProvider struct {
	calls atomic.Int64
	cands []Candidate
	err   error
}

func (p *countingProvider) Lookup(ctx context.Context, term index.Term, targetLang string) ([]Candidate, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	out := make([]Candidate, len(p.cands))
	copy(out, p.cands)
	return out, nil
}

func TestCachedMemoizesLookups(t *testing.T) {
	backend := &countingProvider{cands: []Candidate{
		{Term: index.Term{Lang: "bn", Text: "বই"}, Weight: 1},
	}}
	c := NewCached(backend, 16)
	ctx := context.Background()
	term := index.Term{Lang: "en", Text: "book"}

	for i := 0; i < 5; i++ {
		cands, err := c.Lookup(ctx, term, "bn")
		require.NoError(t, err)
		require.Len(t, cands, 1)
	}
	assert.Equal(t, int64(1), backend.calls.Load())

	// A different target language is a different cache key.
	_, err := c.Lookup(ctx, term, "en")
	require.NoError(t, err)
	assert.Equal(t, int64(2), backend.calls.Load())
}

func TestCachedEmptyResultIsCachedToo(t *testing.T) {
	backend := &countingProvider{}
	c := NewCached(backend, 16)
	ctx := context.Background()
	term := index.Term{Lang: "en", Text: "nonesuch"}

	for i := 0; i < 3; i++ {
		cands, err := c.Lookup(ctx, term, "bn")
		require.NoError(t, err)
		assert.Empty(t, cands)
	}
	// Unknown terms dominate real query streams; a miss must not hammer the
	// backend.
	assert.Equal(t, int64(1), backend.calls.Load())
}

func TestCachedNeverCachesErrors(t *testing.T) {
	backend := &countingProvider{err: errors.New("backend down")}
	c := NewCached(backend, 16)
	ctx := context.Background()
	term := index.Term{Lang: "en", Text: "book"}

	for i := 0; i < 3; i++ {
		_, err := c.Lookup(ctx, term, "bn")
		require.Error(t, err)
	}
	assert.Equal(t, int64(3), backend.calls.Load())
}

func TestCachedCallersCannotPoisonEntries(t *testing.T) {
	backend := &countingProvider{cands: []Candidate{
		{Term: index.Term{Lang: "bn", Text: "বই"}, Weight: 0.5},
	}}
	c := NewCached(backend, 16)
	ctx := context.Background()
	term := index.Term{Lang: "en", Text: "book"}

	first, err := c.Lookup(ctx, term, "bn")
	require.NoError(t, err)
	first[0].Weight = 99

	second, err := c.Lookup(ctx, term, "bn")
	require.NoError(t, err)
	assert.Equal(t, 0.5, second[0].Weight)
}
