package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/lexicon"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

// tableProvider serves candidates from a fixed map keyed by source text.
type tableProvider struct {
	table map[string][]lexicon.Candidate
}

func (p *tableProvider) Lookup(_ context.Context, term index.Term, targetLang string) ([]lexicon.Candidate, error) {
	out := make([]lexicon.Candidate, 0)
	for _, c := range p.table[term.Text] {
		if c.Term.Lang == targetLang {
			out = append(out, c)
		}
	}
	return out, nil
}

func bnCand(text string, w float64) lexicon.Candidate {
	return lexicon.Candidate{Term: index.Term{Lang: "bn", Text: text}, Weight: w}
}

func TestResolveKeepsNormalizedWeights(t *testing.T) {
	p := &tableProvider{table: map[string][]lexicon.Candidate{
		"book": {bnCand("বই", 0.2), bnCand("পুস্তক", 0.3), bnCand("গ্রন্থ", 0.5)},
	}}
	r := NewResolver(p)

	cands, err := r.Resolve(context.Background(), index.Term{Lang: "en", Text: "book"}, "bn")
	require.NoError(t, err)
	require.Len(t, cands, 3)
	assert.InDelta(t, 0.2, cands[0].Weight, 1e-9)
	assert.InDelta(t, 0.3, cands[1].Weight, 1e-9)
	assert.InDelta(t, 0.5, cands[2].Weight, 1e-9)
}

func TestResolveNormalizesRawWeights(t *testing.T) {
	p := &tableProvider{table: map[string][]lexicon.Candidate{
		"book": {bnCand("বই", 1), bnCand("পুস্তক", 1)},
	}}
	r := NewResolver(p)

	cands, err := r.Resolve(context.Background(), index.Term{Lang: "en", Text: "book"}, "bn")
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.InDelta(t, 0.5, cands[0].Weight, 1e-9)
	assert.InDelta(t, 0.5, cands[1].Weight, 1e-9)
}

func TestResolveAllZeroWeightsBecomeUniform(t *testing.T) {
	p := &tableProvider{table: map[string][]lexicon.Candidate{
		"book": {bnCand("বই", 0), bnCand("পুস্তক", 0), bnCand("গ্রন্থ", 0), bnCand("কিতাব", 0)},
	}}
	r := NewResolver(p)

	cands, err := r.Resolve(context.Background(), index.Term{Lang: "en", Text: "book"}, "bn")
	require.NoError(t, err)
	require.Len(t, cands, 4)
	for _, c := range cands {
		assert.InDelta(t, 0.25, c.Weight, 1e-9)
	}
}

func TestResolveNegativeWeightIsMalformed(t *testing.T) {
	p := &tableProvider{table: map[string][]lexicon.Candidate{
		"book": {bnCand("বই", -1)},
	}}
	r := NewResolver(p)

	_, err := r.Resolve(context.Background(), index.Term{Lang: "en", Text: "book"}, "bn")
	require.Error(t, err)
}

func TestResolveUnknownTermIsEmptyNotError(t *testing.T) {
	r := NewResolver(&tableProvider{table: map[string][]lexicon.Candidate{}})

	cands, err := r.Resolve(context.Background(), index.Term{Lang: "en", Text: "nonesuch"}, "bn")
	require.NoError(t, err)
	assert.Nil(t, cands)
}

func TestTranslateBuildsWeightedVector(t *testing.T) {
	p := &tableProvider{table: map[string][]lexicon.Candidate{
		"book": {bnCand("বই", 0.8), bnCand("পুস্তক", 0.2)},
	}}
	tr := NewTranslator(NewResolver(p), nil)

	vec, err := tr.Translate(context.Background(),
		[]index.Term{{Lang: "en", Text: "book"}}, "bn")
	require.NoError(t, err)
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.8, vec[index.Term{Lang: "bn", Text: "বই"}], 1e-9)
	assert.InDelta(t, 0.2, vec[index.Term{Lang: "bn", Text: "পুস্তক"}], 1e-9)
}

func TestTranslateIdentityWhenLanguagesMatch(t *testing.T) {
	// No provider call for same-language terms; the token maps to itself.
	tr := NewTranslator(NewResolver(&tableProvider{}), nil)

	vec, err := tr.Translate(context.Background(),
		[]index.Term{{Lang: "bn", Text: "বই"}, {Lang: "bn", Text: "বই"}}, "bn")
	require.NoError(t, err)
	require.Len(t, vec, 1)
	assert.InDelta(t, 2.0, vec[index.Term{Lang: "bn", Text: "বই"}], 1e-9)
}

func TestTranslateScalesBySourceIDF(t *testing.T) {
	p := &tableProvider{table: map[string][]lexicon.Candidate{
		"rare":   {bnCand("দুর্লভ", 1)},
		"common": {bnCand("সাধারণ", 1)},
	}}
	idf := func(term index.Term) (float64, bool) {
		if term.Text == "rare" {
			return 3.0, true
		}
		return 0, false // no stats: falls back to weight 1
	}
	tr := NewTranslator(NewResolver(p), idf)

	vec, err := tr.Translate(context.Background(), []index.Term{
		{Lang: "en", Text: "rare"},
		{Lang: "en", Text: "common"},
	}, "bn")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, vec[index.Term{Lang: "bn", Text: "দুর্লভ"}], 1e-9)
	assert.InDelta(t, 1.0, vec[index.Term{Lang: "bn", Text: "সাধারণ"}], 1e-9)
}

func TestTranslatePartialCoverageIsRecallLossNotFailure(t *testing.T) {
	p := &tableProvider{table: map[string][]lexicon.Candidate{
		"book": {bnCand("বই", 1)},
	}}
	tr := NewTranslator(NewResolver(p), nil)

	vec, err := tr.Translate(context.Background(), []index.Term{
		{Lang: "en", Text: "book"},
		{Lang: "en", Text: "untranslatable-token"},
	}, "bn")
	require.NoError(t, err)
	assert.Len(t, vec, 1)
}

func TestTranslateAllTokensDroppedFails(t *testing.T) {
	tr := NewTranslator(NewResolver(&tableProvider{}), nil)

	_, err := tr.Translate(context.Background(),
		[]index.Term{{Lang: "en", Text: "nonesuch"}}, "bn")
	require.ErrorIs(t, err, apperrors.ErrUntranslatableQuery)
	assert.Equal(t, 422, apperrors.HTTPStatusCode(err))
}

func TestIndexIDF(t *testing.T) {
	idx, err := index.Build([]index.Document{
		{ID: "d1", Lang: "en", Tokens: []string{"rare", "common"}},
		{ID: "d2", Lang: "en", Tokens: []string{"common"}},
		{ID: "d3", Lang: "en", Tokens: []string{"common"}},
	})
	require.NoError(t, err)
	idf := IndexIDF(idx)

	rare, ok := idf(index.Term{Lang: "en", Text: "rare"})
	require.True(t, ok)
	common, ok := idf(index.Term{Lang: "en", Text: "common"})
	require.True(t, ok)
	assert.Greater(t, rare, common)
	assert.Greater(t, common, 0.0)

	_, ok = idf(index.Term{Lang: "en", Text: "missing"})
	assert.False(t, ok)
}
