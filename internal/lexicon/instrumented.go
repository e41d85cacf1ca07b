package lexicon

import (
	"context"

	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
)

// Instrumented records lookup outcomes and candidate fan-out for a provider.
// It sits beneath the cache wrapper so only real backend lookups are counted.
type Instrumented struct {
	inner   Provider
	backend string
	metrics *metrics.Metrics
}

// NewInstrumented wraps inner, labeling metrics with the backend name
// ("dictionary" or "embedding").
func NewInstrumented(inner Provider, backend string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{inner: inner, backend: backend, metrics: m}
}

func (p *Instrumented) Lookup(ctx context.Context, term index.Term, targetLang string) ([]Candidate, error) {
	cands, err := p.inner.Lookup(ctx, term, targetLang)
	if p.metrics != nil {
		switch {
		case err != nil:
			p.metrics.LexiconLookupsTotal.WithLabelValues(p.backend, "error").Inc()
		case len(cands) == 0:
			p.metrics.LexiconLookupsTotal.WithLabelValues(p.backend, "miss").Inc()
		default:
			p.metrics.LexiconLookupsTotal.WithLabelValues(p.backend, "hit").Inc()
			p.metrics.TranslationCandidates.Observe(float64(len(cands)))
		}
	}
	return cands, err
}
