package lexicon

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin-labs/clir-engine/internal/index"
)

const sampleDict = `{"source":"book","source_lang":"en","target":"বই","target_lang":"bn","weight":0.9}
{"source":"book","source_lang":"en","target":"পুস্তক","target_lang":"bn","weight":0.1}
{"source":"flood","source_lang":"en","target":"বন্যা","target_lang":"bn","weight":1.0}

not json at all
{"source":"","source_lang":"en","target":"x","target_lang":"bn","weight":1}
{"source":"bad","source_lang":"en","target":"খারাপ","target_lang":"bn","weight":-2}
{"source":"বই","source_lang":"bn","target":"book","target_lang":"en","weight":1.0}
`

func TestReadDictionary(t *testing.T) {
	d, err := ReadDictionary(strings.NewReader(sampleDict))
	require.NoError(t, err)

	// book->bn, flood->bn, বই->en; malformed, blank-source, and
	// negative-weight lines dropped.
	assert.Equal(t, 3, d.Size())

	cands, err := d.Lookup(context.Background(), index.Term{Lang: "en", Text: "book"}, "bn")
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, index.Term{Lang: "bn", Text: "বই"}, cands[0].Term)
	assert.Equal(t, 0.9, cands[0].Weight)

	reverse, err := d.Lookup(context.Background(), index.Term{Lang: "bn", Text: "বই"}, "en")
	require.NoError(t, err)
	require.Len(t, reverse, 1)
	assert.Equal(t, index.Term{Lang: "en", Text: "book"}, reverse[0].Term)
}

func TestDictionaryLookupUnknownTerm(t *testing.T) {
	d, err := ReadDictionary(strings.NewReader(sampleDict))
	require.NoError(t, err)

	cands, err := d.Lookup(context.Background(), index.Term{Lang: "en", Text: "unknown"}, "bn")
	require.NoError(t, err)
	assert.Empty(t, cands)

	// Same term toward a language with no entries.
	cands, err = d.Lookup(context.Background(), index.Term{Lang: "en", Text: "book"}, "fr")
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestDictionaryLookupReturnsCopy(t *testing.T) {
	d, err := ReadDictionary(strings.NewReader(sampleDict))
	require.NoError(t, err)

	term := index.Term{Lang: "en", Text: "book"}
	first, err := d.Lookup(context.Background(), term, "bn")
	require.NoError(t, err)
	first[0].Weight = 42

	second, err := d.Lookup(context.Background(), term, "bn")
	require.NoError(t, err)
	assert.Equal(t, 0.9, second[0].Weight)
}
