// Package retrieval scores a weighted query vector against the inverted
// index with a BM25-family formula and returns the top-k documents. Scoring
// is a pure read over the index, so any number of retrievals may run
// concurrently against a stable index.
package retrieval

import (
	"container/heap"
	"math"
	"sort"

	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/translate"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

// Params holds the BM25 free parameters. The idf variant used here
// (ln(1 + (N-df+0.5)/(df+0.5))) stays positive even for terms present in
// more than half the collection, which matters for small corpora where the
// classic formulation goes to zero and silently drops matches.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams are the conventional BM25 settings.
func DefaultParams() Params {
	return Params{K1: 1.2, B: 0.75}
}

// ScoredDoc is one ranked result.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Retrieve scores every document containing at least one query term and
// returns the k best, strictly descending by score with ties broken by
// ascending document identifier. Documents whose accumulated score is zero
// are excluded; if fewer than k documents score, all of them are returned.
//
// An index with zero documents fails with ErrEmptyIndex: retrieval against
// an unbuilt index is a configuration error, not an empty result.
func Retrieve(query translate.Vector, idx *index.Inverted, k int, params Params) ([]ScoredDoc, error) {
	if k < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400, "k must be >= 1, got %d", k)
	}
	totalDocs := idx.DocCount()
	if totalDocs == 0 {
		return nil, apperrors.New(apperrors.ErrEmptyIndex, 503, "retrieval against an empty index")
	}
	if params.K1 <= 0 {
		params = DefaultParams()
	}
	avgDocLen := idx.AvgDocLen()

	// Sparse accumulation: only documents appearing in some matched term's
	// posting list ever get a score cell.
	scores := make(map[string]float64)
	for term, queryWeight := range query {
		if queryWeight <= 0 {
			continue
		}
		postings := idx.Postings(term)
		if len(postings) == 0 {
			continue
		}
		idf := idfWeight(totalDocs, len(postings))
		for _, p := range postings {
			tfNorm := tfNormWeight(float64(p.Frequency), float64(idx.DocLen(p.DocID)), avgDocLen, params)
			scores[p.DocID] += queryWeight * idf * tfNorm
		}
	}

	return selectTopK(scores, k), nil
}

// idfWeight is the smoothed inverse document frequency component.
func idfWeight(totalDocs, docFreq int) float64 {
	return math.Log(1 + (float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5))
}

// tfNormWeight is the saturated, length-normalized term frequency component.
func tfNormWeight(termFreq, docLen, avgDocLen float64, p Params) float64 {
	if avgDocLen == 0 {
		return 0
	}
	lengthRatio := docLen / avgDocLen
	denominator := termFreq + p.K1*(1-p.B+p.B*lengthRatio)
	return (termFreq * (p.K1 + 1)) / denominator
}

// selectTopK keeps the k best entries in a bounded min-heap, then unloads it
// into descending order. Heap order is "worst at the root": lower score, or
// equal score with the later document identifier.
func selectTopK(scores map[string]float64, k int) []ScoredDoc {
	h := &docHeap{}
	heap.Init(h)
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		heap.Push(h, ScoredDoc{DocID: docID, Score: score})
		if h.Len() > k {
			heap.Pop(h)
		}
	}

	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ScoredDoc)
	}
	return result
}

type docHeap []ScoredDoc

func (h docHeap) Len() int { return len(h) }

func (h docHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}

func (h docHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *docHeap) Push(x any) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *docHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merge combines independently ranked lists (one per target language) into a
// single top-k ranking with the same ordering guarantees as Retrieve.
func Merge(rankings [][]ScoredDoc, k int) []ScoredDoc {
	merged := make(map[string]float64)
	for _, ranking := range rankings {
		for _, doc := range ranking {
			merged[doc.DocID] += doc.Score
		}
	}
	return selectTopK(merged, k)
}

// Sort orders docs in place: descending score, ascending DocID on ties.
func Sort(docs []ScoredDoc) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].DocID < docs[j].DocID
	})
}
