package lexicon

import (
	"context"
	"fmt"

	"github.com/arefin-labs/clir-engine/internal/index"
	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/metrics"
	"github.com/arefin-labs/clir-engine/pkg/resilience"
)

// Build assembles the configured provider chain: backend, lookup metrics,
// circuit breaker with timeout, then the LRU memoizer on the outside so a
// cache hit touches none of the lower layers. The returned Guarded exposes
// breaker state for health checks. m may be nil.
func Build(cfg config.LexiconConfig, m *metrics.Metrics) (Provider, *Guarded, error) {
	var backend Provider
	switch cfg.Backend {
	case "dictionary", "":
		dict, err := LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading dictionary: %w", err)
		}
		backend = dict
	case "embedding":
		emb, err := LoadEmbedding(cfg.EmbeddingDir, cfg.Neighbors)
		if err != nil {
			return nil, nil, fmt.Errorf("loading embeddings: %w", err)
		}
		backend = emb
	default:
		return nil, nil, fmt.Errorf("unknown lexicon backend %q", cfg.Backend)
	}

	instrumented := NewInstrumented(backend, backendName(cfg.Backend), m)
	guarded := NewGuarded(instrumented, cfg.LookupTimeout, resilience.CircuitBreakerConfig{})
	return NewCached(guarded, cfg.CacheSize), guarded, nil
}

func backendName(configured string) string {
	if configured == "" {
		return "dictionary"
	}
	return configured
}

// Verify runs one lookup through the full chain so misconfiguration fails at
// startup rather than on the first query. An unknown term is fine; only a
// transport or resource error fails verification.
func Verify(ctx context.Context, p Provider) error {
	_, err := p.Lookup(ctx, index.Term{Lang: "bn", Text: "ঢাকা"}, "en")
	return err
}
