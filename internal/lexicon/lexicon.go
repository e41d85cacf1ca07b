// Package lexicon provides the translation resource behind cross-lingual
// query translation. A Provider maps a source-language term to weighted
// target-language candidates; the two shipped backends are a static bilingual
// dictionary and a cross-lingual embedding space queried for nearest
// neighbors. The engine treats both identically.
package lexicon

import (
	"context"

	"github.com/arefin-labs/clir-engine/internal/index"
)

// Candidate is one possible translation of a source term. Weight is
// non-negative and comparable to the other candidates of the same lookup;
// weights are not required to sum to 1 (the resolver normalizes them).
type Candidate struct {
	Term   index.Term
	Weight float64
}

// Provider looks up translation candidates for a term. An unknown term
// returns an empty slice and no error; an error means the resource itself
// failed and the query cannot proceed.
type Provider interface {
	Lookup(ctx context.Context, term index.Term, targetLang string) ([]Candidate, error)
}
