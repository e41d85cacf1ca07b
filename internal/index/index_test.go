package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

func doc(id, lang string, tokens ...string) Document {
	return Document{ID: id, Lang: lang, Tokens: tokens}
}

// checkInvariants asserts the structural invariants the rest of the engine
// relies on: doc frequency equals posting count, per-document frequencies
// sum to the token count, and posting lists stay sorted.
func checkInvariants(t *testing.T, x *Inverted) {
	t.Helper()
	x.mu.RLock()
	defer x.mu.RUnlock()

	freqByDoc := make(map[string]int)
	for term, pl := range x.postings {
		assert.Equal(t, len(pl), len(x.postings[term]), "doc freq mismatch for %s", term)
		for i, p := range pl {
			freqByDoc[p.DocID] += p.Frequency
			if i > 0 {
				assert.Less(t, pl[i-1].DocID, p.DocID, "postings for %s out of order", term)
			}
		}
	}
	for id, wantLen := range x.docLens {
		assert.Equal(t, wantLen, freqByDoc[id], "token count mismatch for %s", id)
	}
}

func TestAddAndPostings(t *testing.T) {
	x := New()
	require.NoError(t, x.Add(doc("d1", "bn", "বই", "পড়া", "বই")))
	require.NoError(t, x.Add(doc("d2", "bn", "বই")))

	pl := x.Postings(Term{Lang: "bn", Text: "বই"})
	require.Len(t, pl, 2)
	assert.Equal(t, "d1", pl[0].DocID)
	assert.Equal(t, 2, pl[0].Frequency)
	assert.Equal(t, []int{0, 2}, pl[0].Positions)
	assert.Equal(t, "d2", pl[1].DocID)

	assert.Equal(t, 2, x.DocFreq(Term{Lang: "bn", Text: "বই"}))
	assert.Equal(t, 1, x.DocFreq(Term{Lang: "bn", Text: "পড়া"}))
	assert.Equal(t, 2, x.DocCount())
	assert.Equal(t, 3, x.DocLen("d1"))
	assert.Equal(t, "bn", x.DocLang("d1"))
	assert.InDelta(t, 2.0, x.AvgDocLen(), 1e-9)
	checkInvariants(t, x)
}

func TestTermsAreLanguageScoped(t *testing.T) {
	x := New()
	require.NoError(t, x.Add(doc("en1", "en", "gun")))
	require.NoError(t, x.Add(doc("bn1", "bn", "gun")))

	assert.Equal(t, 1, x.DocFreq(Term{Lang: "en", Text: "gun"}))
	assert.Equal(t, 1, x.DocFreq(Term{Lang: "bn", Text: "gun"}))
}

func TestAddDuplicateFails(t *testing.T) {
	x := New()
	require.NoError(t, x.Add(doc("d1", "en", "alpha")))

	err := x.Add(doc("d1", "en", "beta"))
	require.ErrorIs(t, err, apperrors.ErrDuplicateDocument)
	assert.Equal(t, 409, apperrors.HTTPStatusCode(err))

	// The failed Add must not have touched the index.
	assert.Equal(t, 0, x.DocFreq(Term{Lang: "en", Text: "beta"}))
	assert.Equal(t, 1, x.DocCount())
	checkInvariants(t, x)
}

func TestAddEmptyIDFails(t *testing.T) {
	x := New()
	err := x.Add(doc("", "en", "alpha"))
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRemoveRestoresPriorState(t *testing.T) {
	x := New()
	require.NoError(t, x.Add(doc("d1", "en", "alpha", "beta")))
	before := x.Stats()
	dfAlpha := x.DocFreq(Term{Lang: "en", Text: "alpha"})

	require.NoError(t, x.Add(doc("d2", "en", "alpha", "gamma")))
	require.NoError(t, x.Remove("d2"))

	assert.Equal(t, before, x.Stats())
	assert.Equal(t, dfAlpha, x.DocFreq(Term{Lang: "en", Text: "alpha"}))
	// gamma's last posting is gone, so the term itself must be gone.
	assert.Equal(t, 0, x.DocFreq(Term{Lang: "en", Text: "gamma"}))
	assert.Nil(t, x.Postings(Term{Lang: "en", Text: "gamma"}))
	checkInvariants(t, x)
}

func TestRemoveUnknownFails(t *testing.T) {
	x := New()
	err := x.Remove("ghost")
	require.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
}

func TestPostingsReturnsCopy(t *testing.T) {
	x := New()
	require.NoError(t, x.Add(doc("d1", "en", "alpha")))

	pl := x.Postings(Term{Lang: "en", Text: "alpha"})
	pl[0].Frequency = 999

	fresh := x.Postings(Term{Lang: "en", Text: "alpha"})
	assert.Equal(t, 1, fresh[0].Frequency)
}

func TestBuild(t *testing.T) {
	x, err := Build([]Document{
		doc("d1", "bn", "ঢাকা", "বন্যা"),
		doc("d2", "en", "dhaka", "flood"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, x.DocCount())

	_, err = Build([]Document{doc("d1", "en", "a"), doc("d1", "en", "b")})
	require.ErrorIs(t, err, apperrors.ErrDuplicateDocument)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	x := New()
	require.NoError(t, x.Add(doc("d1", "bn", "বই", "পড়া")))
	require.NoError(t, x.Add(doc("d2", "en", "book", "book")))

	entries, docs := x.Snapshot()

	restored := New()
	restored.Restore(entries, docs)

	assert.Equal(t, x.Stats(), restored.Stats())
	assert.Equal(t, x.Postings(Term{Lang: "bn", Text: "বই"}), restored.Postings(Term{Lang: "bn", Text: "বই"}))
	assert.Equal(t, x.DocLang("d2"), restored.DocLang("d2"))
	checkInvariants(t, restored)

	// A restored index must accept further mutations, including removal of
	// restored documents.
	require.NoError(t, restored.Remove("d1"))
	assert.Equal(t, 0, restored.DocFreq(Term{Lang: "bn", Text: "বই"}))
	checkInvariants(t, restored)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	x := New()
	require.NoError(t, x.Add(doc("base", "en", "alpha", "beta")))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				if err := x.Add(doc(id, "en", "alpha")); err != nil {
					t.Error(err)
					return
				}
				if err := x.Remove(id); err != nil {
					t.Error(err)
					return
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				pl := x.Postings(Term{Lang: "en", Text: "alpha"})
				for j := 1; j < len(pl); j++ {
					if pl[j-1].DocID >= pl[j].DocID {
						t.Error("observed unsorted posting list")
						return
					}
				}
				_ = x.AvgDocLen()
				_ = x.DocCount()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, x.DocCount())
	checkInvariants(t, x)
}
