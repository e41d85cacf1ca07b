// Package index implements the in-memory inverted index at the heart of the
// retrieval engine: language-scoped terms mapped to posting lists, with the
// global statistics (document frequency, document count, average document
// length) that the scorer needs.
//
// The index is read-mostly shared state. A single RWMutex serializes Add and
// Remove against each other and against readers; posting lists handed to
// readers are copies, so an in-flight retrieval never observes a partially
// updated posting sequence.
package index

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

// Inverted is the inverted index plus its global statistics.
//
// Invariants, preserved by every mutation:
//   - DocFreq(t) == len(postings for t) for every indexed term
//   - the sum of a document's term frequencies equals its token count
//   - posting lists are sorted by ascending DocID
type Inverted struct {
	mu          sync.RWMutex
	postings    map[Term]PostingList
	docLens     map[string]int
	docLangs    map[string]string
	docTerms    map[string][]Term
	totalTokens int64
}

// New returns an empty index.
func New() *Inverted {
	return &Inverted{
		postings: make(map[Term]PostingList),
		docLens:  make(map[string]int),
		docLangs: make(map[string]string),
		docTerms: make(map[string][]Term),
	}
}

// Build constructs an index from a document collection. It fails with
// ErrDuplicateDocument if two documents share an identifier.
func Build(docs []Document) (*Inverted, error) {
	idx := New()
	for _, doc := range docs {
		if err := idx.Add(doc); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add indexes a document incrementally. Re-indexing an existing identifier is
// an error; callers replace a document with Remove followed by Add so the
// swap is explicit.
func (x *Inverted) Add(doc Document) error {
	if doc.ID == "" {
		return apperrors.New(apperrors.ErrInvalidInput, 400, "document has no identifier")
	}

	// Accumulate per-term frequencies and positions outside the lock.
	type termAcc struct {
		freq      int
		positions []int
	}
	accs := make(map[Term]*termAcc)
	order := make([]Term, 0, len(doc.Tokens))
	for pos, tok := range doc.Tokens {
		t := Term{Lang: doc.Lang, Text: tok}
		acc, ok := accs[t]
		if !ok {
			acc = &termAcc{positions: make([]int, 0, 4)}
			accs[t] = acc
			order = append(order, t)
		}
		acc.freq++
		acc.positions = append(acc.positions, pos)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.docLens[doc.ID]; exists {
		return apperrors.Newf(apperrors.ErrDuplicateDocument, 409, "document %s is already indexed", doc.ID)
	}

	for _, t := range order {
		acc := accs[t]
		x.postings[t] = insertPosting(x.postings[t], Posting{
			DocID:     doc.ID,
			Frequency: acc.freq,
			Positions: acc.positions,
		})
	}
	x.docLens[doc.ID] = len(doc.Tokens)
	x.docLangs[doc.ID] = doc.Lang
	x.docTerms[doc.ID] = order
	x.totalTokens += int64(len(doc.Tokens))
	return nil
}

// Remove deletes every posting for the document and restores all global
// statistics to their pre-Add values. Removing the last posting of a term
// drops the term entirely so document frequencies stay exact.
func (x *Inverted) Remove(docID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	terms, exists := x.docTerms[docID]
	if !exists {
		return apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "document %s is not indexed", docID)
	}

	for _, t := range terms {
		pl := x.postings[t]
		i := sort.Search(len(pl), func(i int) bool { return pl[i].DocID >= docID })
		if i >= len(pl) || pl[i].DocID != docID {
			return fmt.Errorf("index corrupt: term %s has no posting for document %s", t, docID)
		}
		if len(pl) == 1 {
			delete(x.postings, t)
			continue
		}
		// Copy-on-write so readers holding the old slice are unaffected.
		next := make(PostingList, 0, len(pl)-1)
		next = append(next, pl[:i]...)
		next = append(next, pl[i+1:]...)
		x.postings[t] = next
	}

	x.totalTokens -= int64(x.docLens[docID])
	delete(x.docLens, docID)
	delete(x.docLangs, docID)
	delete(x.docTerms, docID)
	return nil
}

// Postings returns a copy of the term's posting list, sorted by DocID, or nil
// if the term is not indexed.
func (x *Inverted) Postings(t Term) PostingList {
	x.mu.RLock()
	defer x.mu.RUnlock()
	pl, ok := x.postings[t]
	if !ok {
		return nil
	}
	out := make(PostingList, len(pl))
	copy(out, pl)
	return out
}

// DocFreq returns the number of documents containing the term.
func (x *Inverted) DocFreq(t Term) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.postings[t])
}

// DocCount returns the number of indexed documents.
func (x *Inverted) DocCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docLens)
}

// DocLen returns the token count of a document, or 0 if unknown.
func (x *Inverted) DocLen(docID string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.docLens[docID]
}

// DocLang returns the language tag of a document, or "".
func (x *Inverted) DocLang(docID string) string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.docLangs[docID]
}

// AvgDocLen returns the mean token count across indexed documents.
func (x *Inverted) AvgDocLen() float64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.docLens) == 0 {
		return 0
	}
	return float64(x.totalTokens) / float64(len(x.docLens))
}

// Stats returns a point-in-time summary of the index.
func (x *Inverted) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	s := Stats{
		Documents:   len(x.docLens),
		Terms:       len(x.postings),
		TotalTokens: x.totalTokens,
	}
	if s.Documents > 0 {
		s.AvgDocLen = float64(x.totalTokens) / float64(s.Documents)
	}
	return s
}

// Snapshot returns the full index state, terms sorted lexicographically and
// postings by DocID, for checkpointing.
func (x *Inverted) Snapshot() ([]TermEntry, []DocStats) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entries := make([]TermEntry, 0, len(x.postings))
	for t, pl := range x.postings {
		cp := make(PostingList, len(pl))
		copy(cp, pl)
		entries = append(entries, TermEntry{Term: t, Postings: cp})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Term.Lang != entries[j].Term.Lang {
			return entries[i].Term.Lang < entries[j].Term.Lang
		}
		return entries[i].Term.Text < entries[j].Term.Text
	})

	docs := make([]DocStats, 0, len(x.docLens))
	for id, n := range x.docLens {
		docs = append(docs, DocStats{DocID: id, Lang: x.docLangs[id], Tokens: n})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].DocID < docs[j].DocID })
	return entries, docs
}

// Restore replaces the index contents with a previously snapshotted state.
func (x *Inverted) Restore(entries []TermEntry, docs []DocStats) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.postings = make(map[Term]PostingList, len(entries))
	x.docLens = make(map[string]int, len(docs))
	x.docLangs = make(map[string]string, len(docs))
	x.docTerms = make(map[string][]Term, len(docs))
	x.totalTokens = 0

	for _, e := range entries {
		pl := make(PostingList, len(e.Postings))
		copy(pl, e.Postings)
		sort.Slice(pl, func(i, j int) bool { return pl[i].DocID < pl[j].DocID })
		x.postings[e.Term] = pl
		for _, p := range pl {
			x.docTerms[p.DocID] = append(x.docTerms[p.DocID], e.Term)
		}
	}
	for _, d := range docs {
		x.docLens[d.DocID] = d.Tokens
		x.docLangs[d.DocID] = d.Lang
		x.totalTokens += int64(d.Tokens)
	}
}

// insertPosting inserts p into pl keeping DocID order, copying the slice so
// concurrent readers of the previous list are never mutated underneath.
func insertPosting(pl PostingList, p Posting) PostingList {
	i := sort.Search(len(pl), func(i int) bool { return pl[i].DocID >= p.DocID })
	next := make(PostingList, 0, len(pl)+1)
	next = append(next, pl[:i]...)
	next = append(next, p)
	next = append(next, pl[i:]...)
	return next
}
