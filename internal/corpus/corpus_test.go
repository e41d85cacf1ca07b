package corpus

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizeDerivesIDFromURL(t *testing.T) {
	a := Article{URL: "https://example.com/news/1", Body: "flood warning issued"}
	require.NoError(t, Normalize(&a))
	assert.Equal(t, HashID("https://example.com/news/1"), a.ID)
	assert.Len(t, a.ID, 16)

	// Re-normalizing the same URL yields the same id.
	b := Article{URL: "https://example.com/news/1", Body: "updated body"}
	require.NoError(t, Normalize(&b))
	assert.Equal(t, a.ID, b.ID)
}

func TestNormalizeKeepsExplicitID(t *testing.T) {
	a := Article{ID: "doc-7", URL: "https://example.com/x", Body: "text here"}
	require.NoError(t, Normalize(&a))
	assert.Equal(t, "doc-7", a.ID)
}

func TestNormalizeInfersLanguageFromScript(t *testing.T) {
	bn := Article{URL: "u1", Body: "ঢাকায় বন্যা পরিস্থিতির অবনতি"}
	require.NoError(t, Normalize(&bn))
	assert.Equal(t, "bn", bn.Language)

	en := Article{URL: "u2", Body: "flood situation worsens in dhaka"}
	require.NoError(t, Normalize(&en))
	assert.Equal(t, "en", en.Language)
}

func TestNormalizeRejectsEmptyAndUnsupported(t *testing.T) {
	empty := Article{URL: "u1", Body: "   "}
	assert.Error(t, Normalize(&empty))

	noID := Article{Body: "text without url or id"}
	assert.Error(t, Normalize(&noID))

	unsupported := Article{URL: "u2", Body: "guten tag", Language: "de"}
	assert.Error(t, Normalize(&unsupported))
}

func TestLoadFileSkipsBadLines(t *testing.T) {
	content := `{"url":"https://a.example/1","title":"Flood","body":"rivers rising"}
{"url":"https://a.example/2","body":"ঢাকায় বন্যা"}

this line is not json
{"url":"https://a.example/3","body":"   "}
`
	path := writeCorpusFile(t, t.TempDir(), "news.jsonl", content)

	articles, stats, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, LoadStats{Files: 1, Accepted: 2, Malformed: 1, Empty: 1}, stats)
	assert.Equal(t, "en", articles[0].Language)
	assert.Equal(t, "bn", articles[1].Language)
}

func TestLoadFileMissing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
}

func TestLoadDirMergesAndCounts(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "a.jsonl",
		`{"url":"https://a.example/1","body":"flood report","published_at":"2026-01-01T00:00:00Z"}
{"url":"https://a.example/2","body":"market news"}
`)
	// Same URL re-crawled later with an updated body.
	writeCorpusFile(t, dir, "b.jsonl",
		`{"url":"https://a.example/1","body":"flood report updated","published_at":"2026-02-01T00:00:00Z"}
`)

	articles, stats, err := LoadDir(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 1, stats.Duplicates)
	require.Len(t, articles, 2)

	var got Article
	for _, a := range articles {
		if a.ID == HashID("https://a.example/1") {
			got = a
		}
	}
	assert.Equal(t, "flood report updated", got.Body)
}

func TestLoadDirEmpty(t *testing.T) {
	_, _, err := LoadDir(t.TempDir(), nil)
	require.Error(t, err)
}

func TestMergeNewestWins(t *testing.T) {
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	new_ := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	merged, dups := Merge([]Article{
		{ID: "b", Body: "newer", PublishedAt: new_},
		{ID: "a", Body: "only"},
		{ID: "b", Body: "older", PublishedAt: old},
	})
	assert.Equal(t, 1, dups)
	require.Len(t, merged, 2)
	// Sorted by id, and the later publication wins regardless of input order.
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, "b", merged[1].ID)
	assert.Equal(t, "newer", merged[1].Body)
}

func TestMergeEqualTimesLaterElementWins(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	merged, dups := Merge([]Article{
		{ID: "a", Body: "first", PublishedAt: ts},
		{ID: "a", Body: "second", PublishedAt: ts},
	})
	assert.Equal(t, 1, dups)
	require.Len(t, merged, 1)
	assert.Equal(t, "second", merged[0].Body)
}

func TestText(t *testing.T) {
	assert.Equal(t, "Title\nBody", Article{Title: "Title", Body: "Body"}.Text())
	assert.Equal(t, "Body only", Article{Body: "Body only"}.Text())
}
