package lexicon

import (
	"context"
	"errors"
	"time"

	"github.com/arefin-labs/clir-engine/internal/index"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
	"github.com/arefin-labs/clir-engine/pkg/resilience"
)

// Guarded wraps a provider with a per-lookup timeout and a circuit breaker.
// The engine never retries the translation resource itself; a failing or
// slow provider surfaces as ErrDependencyUnavailable and the breaker keeps
// subsequent queries from piling onto it. Retry policy belongs to the caller.
type Guarded struct {
	inner   Provider
	breaker *resilience.CircuitBreaker
	timeout time.Duration
}

// NewGuarded wraps inner with the given lookup timeout and breaker settings.
func NewGuarded(inner Provider, timeout time.Duration, cfg resilience.CircuitBreakerConfig) *Guarded {
	return &Guarded{
		inner:   inner,
		breaker: resilience.NewCircuitBreaker("lexicon", cfg),
		timeout: timeout,
	}
}

func (g *Guarded) Lookup(ctx context.Context, term index.Term, targetLang string) ([]Candidate, error) {
	var cands []Candidate
	err := g.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, g.timeout, "lexicon lookup", func(ctx context.Context) error {
			var err error
			cands, err = g.inner.Lookup(ctx, term, targetLang)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDependencyUnavailable) {
			return nil, err
		}
		return nil, apperrors.Newf(apperrors.ErrDependencyUnavailable, 502, "lexicon lookup for %s: %v", term, err)
	}
	return cands, nil
}

// State exposes the breaker state for health checks and metrics.
func (g *Guarded) State() resilience.State {
	return g.breaker.GetState()
}
