package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin-labs/clir-engine/internal/index"
)

func snapshotFixture(t *testing.T) ([]index.TermEntry, []index.DocStats) {
	t.Helper()
	idx, err := index.Build([]index.Document{
		{ID: "d1", Lang: "bn", Tokens: []string{"বই", "পড়া"}},
		{ID: "d2", Lang: "en", Tokens: []string{"book"}},
	})
	require.NoError(t, err)
	entries, docs := idx.Snapshot()
	return entries, docs
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries, docs := snapshotFixture(t)

	name, err := NewWriter(dir).Write(entries, docs)
	require.NoError(t, err)
	assert.True(t, filepath.Ext(name) == ".clck")

	gotEntries, gotDocs, err := Read(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, entries, gotEntries)
	assert.Equal(t, docs, gotDocs)

	// A restored index serves the same postings.
	restored := index.New()
	restored.Restore(gotEntries, gotDocs)
	assert.Equal(t, 2, restored.DocCount())
	assert.Len(t, restored.Postings(index.Term{Lang: "bn", Text: "বই"}), 1)
}

func TestWriteRefusesEmptySnapshot(t *testing.T) {
	_, err := NewWriter(t.TempDir()).Write(nil, nil)
	require.Error(t, err)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	entries, docs := snapshotFixture(t)
	_, err := NewWriter(dir).Write(entries, docs)
	require.NoError(t, err)

	tmp, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmp)
}

func TestReadRejectsCorruption(t *testing.T) {
	dir := t.TempDir()
	entries, docs := snapshotFixture(t)
	name, err := NewWriter(dir).Write(entries, docs)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	pristine, err := os.ReadFile(path)
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"flipped payload byte", func(b []byte) []byte {
			c := append([]byte(nil), b...)
			c[40] ^= 0xff
			return c
		}},
		{"bad magic", func(b []byte) []byte {
			c := append([]byte(nil), b...)
			c[0] = 0x00
			return c
		}},
		{"unsupported version", func(b []byte) []byte {
			c := append([]byte(nil), b...)
			c[4] = 99
			return c
		}},
		{"truncated", func(b []byte) []byte {
			return b[:len(b)/2]
		}},
		{"truncated below header", func(b []byte) []byte {
			return b[:10]
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, tc.mutate(pristine), 0o644))
			_, _, err := Read(path)
			assert.Error(t, err)
		})
	}
}

func TestLatestSkipsCorruptNewest(t *testing.T) {
	dir := t.TempDir()
	entries, docs := snapshotFixture(t)
	w := NewWriter(dir)

	good, err := w.Write(entries, docs)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // distinct nanosecond names
	bad, err := w.Write(entries, docs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, bad), []byte("garbage"), 0o644))

	gotEntries, gotDocs, name, err := Latest(dir)
	require.NoError(t, err)
	assert.Equal(t, good, name)
	assert.Equal(t, entries, gotEntries)
	assert.Equal(t, docs, gotDocs)
}

func TestLatestEmptyDirIsNotAnError(t *testing.T) {
	entries, docs, name, err := Latest(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Nil(t, docs)
	assert.Empty(t, name)

	// A directory that does not exist yet means cold start, same answer.
	_, _, name, err = Latest(filepath.Join(t.TempDir(), "nonexistent"))
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestPruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	entries, docs := snapshotFixture(t)
	w := NewWriter(dir)

	var names []string
	for i := 0; i < 5; i++ {
		name, err := w.Write(entries, docs)
		require.NoError(t, err)
		names = append(names, name)
		time.Sleep(2 * time.Millisecond)
	}

	require.NoError(t, w.Prune(2))
	remaining, err := filepath.Glob(filepath.Join(dir, "*.clck"))
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, names[3], filepath.Base(remaining[0]))
	assert.Equal(t, names[4], filepath.Base(remaining[1]))

	// Pruning below one file still keeps the newest.
	require.NoError(t, w.Prune(0))
	remaining, err = filepath.Glob(filepath.Join(dir, "*.clck"))
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
