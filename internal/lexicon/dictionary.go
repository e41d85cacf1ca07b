package lexicon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/arefin-labs/clir-engine/internal/index"
)

// Entry is one line of a dictionary JSONL file. Weight is a raw association
// strength (co-occurrence count, alignment probability); it only has to be
// non-negative and comparable within one source term.
type Entry struct {
	Source     string  `json:"source"`
	SourceLang string  `json:"source_lang"`
	Target     string  `json:"target"`
	TargetLang string  `json:"target_lang"`
	Weight     float64 `json:"weight"`
}

type dictKey struct {
	srcLang string
	srcText string
	tgtLang string
}

// Dictionary is a static bilingual table loaded fully into memory. Lookups
// never fail once loading succeeds.
type Dictionary struct {
	entries map[dictKey][]Candidate
	logger  *slog.Logger
}

// LoadDictionary reads a JSONL dictionary file. Blank lines are skipped;
// malformed lines and negative weights are counted and dropped rather than
// aborting the load, matching how the corpus files are handled.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()

	d, err := ReadDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	return d, nil
}

// ReadDictionary parses JSONL dictionary entries from r.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{
		entries: make(map[dictKey][]Candidate),
		logger:  slog.Default().With("component", "lexicon-dictionary"),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var line, skipped int
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			skipped++
			continue
		}
		if e.Source == "" || e.Target == "" || e.SourceLang == "" || e.TargetLang == "" || e.Weight < 0 {
			skipped++
			continue
		}
		key := dictKey{srcLang: e.SourceLang, srcText: e.Source, tgtLang: e.TargetLang}
		d.entries[key] = append(d.entries[key], Candidate{
			Term:   index.Term{Lang: e.TargetLang, Text: e.Target},
			Weight: e.Weight,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning dictionary: %w", err)
	}
	d.logger.Info("dictionary loaded",
		"lines", line,
		"skipped", skipped,
		"source_terms", len(d.entries),
	)
	return d, nil
}

// Lookup returns the raw candidates for the term, or an empty slice if the
// term has no dictionary entry.
func (d *Dictionary) Lookup(_ context.Context, term index.Term, targetLang string) ([]Candidate, error) {
	key := dictKey{srcLang: term.Lang, srcText: term.Text, tgtLang: targetLang}
	cands := d.entries[key]
	out := make([]Candidate, len(cands))
	copy(out, cands)
	return out, nil
}

// Size returns the number of distinct (source term, target language) keys.
func (d *Dictionary) Size() int {
	return len(d.entries)
}
