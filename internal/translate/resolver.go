// Package translate turns a normalized source-language query into a weighted
// target-language query vector: per-term candidate resolution against the
// lexicon, ambiguity normalization, and IDF-weighted accumulation.
package translate

import (
	"context"
	"fmt"

	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/internal/lexicon"
)

// Resolver looks up translation candidates and normalizes their weights so
// that every source term contributes the same total translation mass
// regardless of how ambiguous it is. A term with five candidates and a term
// with one both contribute mass 1; without this, ambiguous terms dominate
// the query vector purely through candidate count.
type Resolver struct {
	provider lexicon.Provider
}

// NewResolver creates a Resolver over the given provider.
func NewResolver(provider lexicon.Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve returns the term's translation candidates with weights normalized
// to sum to 1. An unknown term yields an empty slice. Candidates whose raw
// weight is negative are rejected as a malformed resource.
func (r *Resolver) Resolve(ctx context.Context, term index.Term, targetLang string) ([]lexicon.Candidate, error) {
	cands, err := r.provider.Lookup(ctx, term, targetLang)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}

	var sum float64
	for _, c := range cands {
		if c.Weight < 0 {
			return nil, fmt.Errorf("lexicon returned negative weight %v for %s -> %s", c.Weight, term, c.Term)
		}
		sum += c.Weight
	}
	if sum == 0 {
		// All-zero weights carry no preference; treat candidates as equally
		// likely rather than dropping the term.
		uniform := 1 / float64(len(cands))
		out := make([]lexicon.Candidate, len(cands))
		for i, c := range cands {
			out[i] = lexicon.Candidate{Term: c.Term, Weight: uniform}
		}
		return out, nil
	}

	out := make([]lexicon.Candidate, len(cands))
	for i, c := range cands {
		out[i] = lexicon.Candidate{Term: c.Term, Weight: c.Weight / sum}
	}
	return out, nil
}
