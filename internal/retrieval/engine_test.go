package retrieval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/translate"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

func bnTerm(text string) index.Term {
	return index.Term{Lang: "bn", Text: text}
}

func buildIndex(t *testing.T, docs ...index.Document) *index.Inverted {
	t.Helper()
	idx, err := index.Build(docs)
	require.NoError(t, err)
	return idx
}

func TestRetrieveEmptyIndexFails(t *testing.T) {
	_, err := Retrieve(translate.Vector{bnTerm("বই"): 1}, index.New(), 10, DefaultParams())
	require.ErrorIs(t, err, apperrors.ErrEmptyIndex)
	assert.Equal(t, 503, apperrors.HTTPStatusCode(err))
}

func TestRetrieveInvalidKFails(t *testing.T) {
	idx := buildIndex(t, index.Document{ID: "d1", Lang: "bn", Tokens: []string{"বই"}})
	_, err := Retrieve(translate.Vector{bnTerm("বই"): 1}, idx, 0, DefaultParams())
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// The canonical cross-lingual case: "book" resolved to {"বই": 1.0} against
// two Bangla documents. Both must score positive, and the order must follow
// the scoring formula exactly: with b=0.75 the shorter D2 beats the longer
// D1 despite equal term frequency.
func TestRetrieveTranslatedQueryScoresBothDocuments(t *testing.T) {
	idx := buildIndex(t,
		index.Document{ID: "D1", Lang: "bn", Tokens: []string{"বই", "পড়া"}},
		index.Document{ID: "D2", Lang: "bn", Tokens: []string{"বই"}},
	)
	query := translate.Vector{bnTerm("বই"): 1.0}

	docs, err := Retrieve(query, idx, 2, DefaultParams())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Greater(t, d.Score, 0.0)
	}

	idf := math.Log(1 + 0.5/2.5) // N=2, df=2
	score := func(docLen float64) float64 {
		avg := 1.5
		denom := 1 + 1.2*(1-0.75+0.75*docLen/avg)
		return idf * (1 * 2.2) / denom
	}
	assert.Equal(t, "D2", docs[0].DocID)
	assert.InDelta(t, score(1), docs[0].Score, 1e-9)
	assert.Equal(t, "D1", docs[1].DocID)
	assert.InDelta(t, score(2), docs[1].Score, 1e-9)
}

func TestRetrieveIsDeterministicIncludingTies(t *testing.T) {
	// Four identical documents tie exactly; order must be ascending DocID,
	// run after run.
	idx := buildIndex(t,
		index.Document{ID: "c", Lang: "bn", Tokens: []string{"বই"}},
		index.Document{ID: "a", Lang: "bn", Tokens: []string{"বই"}},
		index.Document{ID: "d", Lang: "bn", Tokens: []string{"বই"}},
		index.Document{ID: "b", Lang: "bn", Tokens: []string{"বই"}},
	)
	query := translate.Vector{bnTerm("বই"): 1.0}

	first, err := Retrieve(query, idx, 4, DefaultParams())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Retrieve(query, idx, 4, DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "a", first[0].DocID)
	assert.Equal(t, "d", first[3].DocID)
}

func TestRetrieveTopKTruncation(t *testing.T) {
	idx := buildIndex(t,
		index.Document{ID: "d1", Lang: "bn", Tokens: []string{"বই", "বই", "বই"}},
		index.Document{ID: "d2", Lang: "bn", Tokens: []string{"বই", "বই", "x"}},
		index.Document{ID: "d3", Lang: "bn", Tokens: []string{"বই", "x", "x"}},
	)
	query := translate.Vector{bnTerm("বই"): 1.0}

	docs, err := Retrieve(query, idx, 2, DefaultParams())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d1", docs[0].DocID)
	assert.Equal(t, "d2", docs[1].DocID)
}

func TestRetrieveKLargerThanMatches(t *testing.T) {
	idx := buildIndex(t,
		index.Document{ID: "d1", Lang: "bn", Tokens: []string{"বই"}},
		index.Document{ID: "d2", Lang: "bn", Tokens: []string{"পড়া"}},
	)
	query := translate.Vector{bnTerm("বই"): 1.0}

	docs, err := Retrieve(query, idx, 100, DefaultParams())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].DocID)
}

func TestRetrieveNoMatchesIsEmptyNotError(t *testing.T) {
	idx := buildIndex(t, index.Document{ID: "d1", Lang: "bn", Tokens: []string{"বই"}})
	docs, err := Retrieve(translate.Vector{bnTerm("নদী"): 1.0}, idx, 5, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRetrieveAccumulatesAcrossQueryTerms(t *testing.T) {
	idx := buildIndex(t,
		index.Document{ID: "both", Lang: "bn", Tokens: []string{"বই", "পড়া"}},
		index.Document{ID: "one", Lang: "bn", Tokens: []string{"বই", "নদী"}},
	)
	query := translate.Vector{bnTerm("বই"): 0.5, bnTerm("পড়া"): 0.5}

	docs, err := Retrieve(query, idx, 2, DefaultParams())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "both", docs[0].DocID)
	assert.Greater(t, docs[0].Score, docs[1].Score)
}

func TestMergeSumsAcrossRankings(t *testing.T) {
	merged := Merge([][]ScoredDoc{
		{{DocID: "a", Score: 1.0}, {DocID: "b", Score: 0.5}},
		{{DocID: "b", Score: 0.8}, {DocID: "c", Score: 0.2}},
	}, 3)

	require.Len(t, merged, 3)
	assert.Equal(t, ScoredDoc{DocID: "b", Score: 1.3}, merged[0])
	assert.Equal(t, ScoredDoc{DocID: "a", Score: 1.0}, merged[1])
	assert.Equal(t, ScoredDoc{DocID: "c", Score: 0.2}, merged[2])
}

func TestMergeRespectsK(t *testing.T) {
	merged := Merge([][]ScoredDoc{
		{{DocID: "a", Score: 3}, {DocID: "b", Score: 2}, {DocID: "c", Score: 1}},
	}, 2)
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].DocID)
}

func TestSortOrdering(t *testing.T) {
	docs := []ScoredDoc{
		{DocID: "b", Score: 1},
		{DocID: "a", Score: 1},
		{DocID: "c", Score: 2},
	}
	Sort(docs)
	assert.Equal(t, []ScoredDoc{
		{DocID: "c", Score: 2},
		{DocID: "a", Score: 1},
		{DocID: "b", Score: 1},
	}, docs)
}
