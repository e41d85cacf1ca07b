package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

func TestForSelectsByLanguage(t *testing.T) {
	en, err := For(LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, LangEnglish, en.Lang())

	bn, err := For(LangBangla)
	require.NoError(t, err)
	assert.Equal(t, LangBangla, bn.Lang())

	_, err = For("de")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.False(t, Supported("de"))
	assert.True(t, Supported(LangBangla))
}

func TestEnglishAnalyze(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercase and split", "Floods in Dhaka", []string{"flood", "dhaka"}},
		{"stopwords and short words dropped", "a THE is flood", []string{"flood"}},
		{"punctuation boundaries", "flood, dhaka; bank", []string{"flood", "dhaka", "bank"}},
		{"plural stem", "books readers", []string{"book", "reader"}},
		{"empty", "", nil},
		{"only stopwords", "the of and", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := English{}.Analyze(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnglishStemSameFormForVariants(t *testing.T) {
	// Different inflections of one lemma must map to one index term.
	a := English{}
	assert.Equal(t, a.Analyze("flood"), a.Analyze("floods"))
	assert.Equal(t, a.Analyze("report"), a.Analyze("reported"))
}

func TestBanglaAnalyze(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain words", "ঢাকা বন্যা", []string{"ঢাকা", "বন্যা"}},
		{"classifier suffix stripped", "বইগুলো", []string{"বই"}},
		{"locative suffix stripped", "ঢাকাতে", []string{"ঢাকা"}},
		{"stopword removed", "ঢাকা এবং বন্যা", []string{"ঢাকা", "বন্যা"}},
		{"latin text ignored", "hello world", nil},
		{"mixed script keeps bangla only", "ঢাকা flood বন্যা", []string{"ঢাকা", "বন্যা"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bangla{}.Analyze(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBanglaAnalyzeDropsZeroWidthJoiners(t *testing.T) {
	// Scraped pages often carry ZWNJ/ZWJ inside words.
	withJoiner := "বই‌গুলো"
	assert.Equal(t, Bangla{}.Analyze("বইগুলো"), Bangla{}.Analyze(withJoiner))
}

func TestBanglaSuffixGuard(t *testing.T) {
	// A word that is mostly suffix must not be stemmed to nothing.
	got := Bangla{}.Analyze("ঘরে")
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0])
}

func TestIsBanglaText(t *testing.T) {
	assert.True(t, IsBanglaText("ঢাকায় বন্যার পানি বাড়ছে", 0.5))
	assert.False(t, IsBanglaText("Flood waters rising in Dhaka", 0.5))
	assert.False(t, IsBanglaText("", 0.5))
	// Mostly English with one Bangla word stays English.
	assert.False(t, IsBanglaText("the word বই means book in Bangla", 0.5))
}
