package translate

import (
	"context"
	"math"

	"github.com/arefin-labs/clir-engine/internal/index"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

// Vector is a weighted bag of target-language terms, the query representation
// the retrieval engine scores against the index.
type Vector map[index.Term]float64

// SourceIDF supplies an informativeness weight for a source-language term.
// The second return is false when no statistics exist for the term, in which
// case the translator falls back to weight 1.
type SourceIDF func(term index.Term) (float64, bool)

// Translator composes per-term resolution into a single query vector.
type Translator struct {
	resolver *Resolver
	srcIDF   SourceIDF
}

// NewTranslator creates a Translator. srcIDF may be nil when no
// source-language collection statistics are available.
func NewTranslator(resolver *Resolver, srcIDF SourceIDF) *Translator {
	return &Translator{resolver: resolver, srcIDF: srcIDF}
}

// Translate builds the weighted query vector for the given normalized query
// tokens. Each token contributes srcIDF(token) * candidateWeight to every
// candidate; tokens with no translation contribute nothing (a recall loss,
// not a failure). Tokens already in the target language map to themselves.
//
// If every token is dropped, Translate fails with ErrUntranslatableQuery so
// the retrieval engine is never invoked with a vacuous query: an empty
// ranking here would be indistinguishable from "no relevant documents".
func (t *Translator) Translate(ctx context.Context, tokens []index.Term, targetLang string) (Vector, error) {
	vec := make(Vector)
	for _, tok := range tokens {
		weight := 1.0
		if t.srcIDF != nil {
			if idf, ok := t.srcIDF(tok); ok {
				weight = idf
			}
		}

		if tok.Lang == targetLang {
			vec[tok] += weight
			continue
		}

		cands, err := t.resolver.Resolve(ctx, tok, targetLang)
		if err != nil {
			return nil, err
		}
		for _, c := range cands {
			vec[c.Term] += weight * c.Weight
		}
	}

	if len(vec) == 0 {
		return nil, apperrors.Newf(apperrors.ErrUntranslatableQuery, 422,
			"none of %d query tokens has a translation into %q", len(tokens), targetLang)
	}
	return vec, nil
}

// IndexIDF adapts an inverted index into a SourceIDF using the same
// document-frequency weighting as the scorer, so source terms that are rare
// in a source-language collection carry more translation mass.
func IndexIDF(idx *index.Inverted) SourceIDF {
	return func(term index.Term) (float64, bool) {
		n := idx.DocCount()
		if n == 0 {
			return 0, false
		}
		df := idx.DocFreq(term)
		if df == 0 {
			return 0, false
		}
		return idfWeight(n, df), true
	}
}

// idfWeight mirrors the scorer's document-frequency weighting; the +0.5
// smoothing keeps the weight positive even for terms present in most
// documents.
func idfWeight(n, df int) float64 {
	return math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
}
