// Package analyzer provides per-language text normalization for the
// retrieval engine. Each Analyzer lower-cases (where applicable), splits,
// removes stop-words, and applies a light suffix stemmer for its language.
// Analyzers are pure functions over their input and safe for concurrent use.
package analyzer

import (
	apperrors "github.com/arefin-labs/clir-engine/pkg/errors"
)

// Supported language tags.
const (
	LangEnglish = "en"
	LangBangla  = "bn"
)

// Analyzer turns raw text into an ordered sequence of normalized tokens.
type Analyzer interface {
	// Lang returns the language tag this analyzer handles.
	Lang() string
	// Analyze returns the normalized tokens of text in document order.
	Analyze(text string) []string
}

// For returns the analyzer for a language tag.
func For(lang string) (Analyzer, error) {
	switch lang {
	case LangEnglish:
		return English{}, nil
	case LangBangla:
		return Bangla{}, nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 400, "no analyzer for language %q", lang)
	}
}

// Supported reports whether a language tag has an analyzer.
func Supported(lang string) bool {
	_, err := For(lang)
	return err == nil
}
