// Package corpus loads crawled news articles from JSONL files into indexable
// documents. Crawler output is messy: duplicate URLs across runs, missing
// language tags, blank bodies. Loading is tolerant (bad lines are counted and
// skipped, never fatal) and merging is deterministic.
package corpus

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arefin-labs/clir-engine/internal/analyzer"
)

// Article is one crawled news item as stored in the JSONL corpus files.
type Article struct {
	ID          string    `json:"id,omitempty"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Language    string    `json:"language,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Text returns the indexable text of the article.
func (a Article) Text() string {
	if a.Title == "" {
		return a.Body
	}
	return a.Title + "\n" + a.Body
}

// LoadStats reports what a load pass accepted and dropped.
type LoadStats struct {
	Files      int
	Accepted   int
	Malformed  int
	Empty      int
	Duplicates int
}

// banglaRatioThreshold decides language inference: an article whose letters
// are at least this fraction Bangla script is tagged "bn", otherwise "en".
const banglaRatioThreshold = 0.5

// Normalize fills the derived fields of an article in place: the URL-hash
// identifier when no explicit id is present, and script-based language
// inference when the crawler left the tag empty.
func Normalize(a *Article) error {
	a.URL = strings.TrimSpace(a.URL)
	a.Title = strings.TrimSpace(a.Title)
	a.Body = strings.TrimSpace(a.Body)
	if a.Body == "" && a.Title == "" {
		return fmt.Errorf("article %q has no text", a.URL)
	}
	if a.ID == "" {
		if a.URL == "" {
			return fmt.Errorf("article has neither id nor url")
		}
		a.ID = HashID(a.URL)
	}
	if a.Language == "" {
		if analyzer.IsBanglaText(a.Text(), banglaRatioThreshold) {
			a.Language = analyzer.LangBangla
		} else {
			a.Language = analyzer.LangEnglish
		}
	}
	if !analyzer.Supported(a.Language) {
		return fmt.Errorf("article %s has unsupported language %q", a.ID, a.Language)
	}
	return nil
}

// HashID derives a stable document identifier from an article URL, so
// re-crawls of the same page map to the same document.
func HashID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

// LoadFile reads one JSONL corpus file. Malformed or empty lines are skipped
// and counted; a read error on the file itself is fatal.
func LoadFile(path string) ([]Article, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()

	stats := LoadStats{Files: 1}
	var articles []Article

	scanner := bufio.NewScanner(f)
	// Full article bodies routinely exceed the default scanner buffer.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var a Article
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			stats.Malformed++
			continue
		}
		if err := Normalize(&a); err != nil {
			stats.Empty++
			continue
		}
		articles = append(articles, a)
		stats.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	return articles, stats, nil
}

// LoadDir loads every *.jsonl file under dir concurrently and merges the
// result. Within the merge, later-published duplicates win.
func LoadDir(dir string, logger *slog.Logger) ([]Article, LoadStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("listing corpus dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, LoadStats{}, fmt.Errorf("no corpus files in %s", dir)
	}
	sort.Strings(paths)

	var (
		mu    sync.Mutex
		all   []Article
		total LoadStats
	)
	g := new(errgroup.Group)
	g.SetLimit(4)
	for _, path := range paths {
		g.Go(func() error {
			articles, stats, err := LoadFile(path)
			if err != nil {
				return err
			}
			logger.Info("loaded corpus file",
				"path", path,
				"accepted", stats.Accepted,
				"malformed", stats.Malformed,
				"empty", stats.Empty)
			mu.Lock()
			all = append(all, articles...)
			total.Files++
			total.Accepted += stats.Accepted
			total.Malformed += stats.Malformed
			total.Empty += stats.Empty
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, total, err
	}

	merged, dups := Merge(all)
	total.Duplicates = dups
	return merged, total, nil
}

// Merge deduplicates articles by identifier. When two articles share an id
// the one with the later publication time wins, so re-crawled updates replace
// stale copies; on equal times the later element in the input wins. The
// result is sorted by id for deterministic downstream indexing.
func Merge(articles []Article) ([]Article, int) {
	byID := make(map[string]Article, len(articles))
	dups := 0
	for _, a := range articles {
		prev, ok := byID[a.ID]
		if !ok {
			byID[a.ID] = a
			continue
		}
		dups++
		if !a.PublishedAt.Before(prev.PublishedAt) {
			byID[a.ID] = a
		}
	}

	out := make([]Article, 0, len(byID))
	for _, a := range byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, dups
}
