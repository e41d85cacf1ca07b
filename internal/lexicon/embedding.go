package lexicon

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coder/hnsw"

	"github.com/arefin-labs/clir-engine/internal/index"
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

// Embedding queries a pre-aligned cross-lingual embedding space: source terms
// are embedded with their language's vector table and the nearest
// target-language terms are returned with cosine-similarity weights. Vector
// tables use the word2vec text format ("word v1 v2 ... vD" per line, optional
// "count dim" header), one file per language named <lang>.vec.
type Embedding struct {
	dims      int
	neighbors int
	vectors   map[string]map[string][]float32 // lang -> word -> vector
	graphs    map[string]*hnsw.Graph[uint64]  // target lang -> ANN graph
	keys      map[string]map[uint64]string    // target lang -> node key -> word
	logger    *slog.Logger
}

// LoadEmbedding reads every <lang>.vec file in dir and builds one HNSW graph
// per language so any language can serve as the target side.
func LoadEmbedding(dir string, neighbors int) (*Embedding, error) {
	if neighbors <= 0 {
		neighbors = 10
	}
	e := &Embedding{
		neighbors: neighbors,
		vectors:   make(map[string]map[string][]float32),
		graphs:    make(map[string]*hnsw.Graph[uint64]),
		keys:      make(map[string]map[uint64]string),
		logger:    slog.Default().With("component", "lexicon-embedding"),
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.vec"))
	if err != nil {
		return nil, fmt.Errorf("listing embedding dir %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .vec files in %s", dir)
	}

	for _, path := range matches {
		lang := strings.TrimSuffix(filepath.Base(path), ".vec")
		if err := e.loadLanguage(lang, path); err != nil {
			return nil, fmt.Errorf("loading vectors for %s: %w", lang, err)
		}
	}
	return e, nil
}

func (e *Embedding) loadLanguage(lang, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 32

	table := make(map[string][]float32)
	keys := make(map[uint64]string)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var nextKey uint64
	var skipped int
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && nextKey == 0 && len(table) == 0 {
			// word2vec header line: "<count> <dims>"
			continue
		}
		if len(fields) < 2 {
			continue
		}
		word := fields[0]
		vec := make([]float32, 0, len(fields)-1)
		ok := true
		for _, fstr := range fields[1:] {
			v, err := strconv.ParseFloat(fstr, 32)
			if err != nil {
				ok = false
				break
			}
			vec = append(vec, float32(v))
		}
		if !ok {
			skipped++
			continue
		}
		if e.dims == 0 {
			e.dims = len(vec)
		}
		if len(vec) != e.dims {
			skipped++
			continue
		}
		table[word] = vec
		keys[nextKey] = word
		graph.Add(hnsw.MakeNode(nextKey, vec))
		nextKey++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	e.vectors[lang] = table
	e.graphs[lang] = graph
	e.keys[lang] = keys
	e.logger.Info("embedding table loaded",
		"lang", lang,
		"words", len(table),
		"dims", e.dims,
		"skipped", skipped,
	)
	return nil
}

// Lookup embeds the source term and returns its nearest target-language
// neighbors weighted by cosine similarity. Unknown source words return an
// empty slice; a missing language table is a dependency failure.
func (e *Embedding) Lookup(_ context.Context, term index.Term, targetLang string) ([]Candidate, error) {
	table, ok := e.vectors[term.Lang]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrDependencyUnavailable, 502, "no embedding table for language %q", term.Lang)
	}
	graph, ok := e.graphs[targetLang]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrDependencyUnavailable, 502, "no embedding table for language %q", targetLang)
	}

	vec, ok := table[term.Text]
	if !ok {
		return nil, nil
	}

	nodes := graph.Search(vec, e.neighbors)
	cands := make([]Candidate, 0, len(nodes))
	for _, node := range nodes {
		word, ok := e.keys[targetLang][node.Key]
		if !ok {
			continue
		}
		sim := 1 - float64(hnsw.CosineDistance(vec, node.Value))
		if sim <= 0 {
			continue
		}
		cands = append(cands, Candidate{
			Term:   index.Term{Lang: targetLang, Text: word},
			Weight: sim,
		})
	}
	return cands, nil
}

// Dims returns the embedding dimensionality.
func (e *Embedding) Dims() int {
	return e.dims
}
