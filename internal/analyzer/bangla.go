package analyzer

import (
	"strings"
)

// banglaStopWords covers the most frequent Bangla function words seen in
// news text. The list is deliberately short; aggressive stop-wording hurts
// recall more in Bangla than in English because case markers attach to
// content words.
var banglaStopWords = map[string]struct{}{
	"এবং": {}, "ও": {}, "এই": {}, "যে": {}, "করে": {}, "থেকে": {},
	"একটি": {}, "না": {}, "তার": {}, "হয়": {}, "হয়েছে": {}, "জন্য": {},
	"সঙ্গে": {}, "এর": {}, "কিছু": {}, "তিনি": {}, "তা": {}, "কি": {},
	"এক": {}, "দিয়ে": {}, "মধ্যে": {}, "পর": {}, "আর": {}, "কিন্তু": {},
	"হবে": {}, "ছিল": {}, "নিয়ে": {}, "বলে": {}, "সব": {}, "এ": {},
	"যা": {}, "তাদের": {}, "এখন": {}, "আগে": {}, "পারে": {}, "হচ্ছে": {},
}

// banglaSuffixes are inflectional endings (case markers, plural markers,
// classifiers) stripped in order; the first match wins. minRunes guards
// against reducing a word below a usable stem.
var banglaSuffixes = []struct {
	suffix   string
	minRunes int
}{
	{"গুলোতে", 2},
	{"গুলোর", 2},
	{"গুলিতে", 2},
	{"গুলির", 2},
	{"গুলো", 2},
	{"গুলি", 2},
	{"দেরকে", 2},
	{"দের", 2},
	{"টিতে", 2},
	{"টির", 2},
	{"টিকে", 2},
	{"টি", 2},
	{"টা", 2},
	{"খানা", 2},
	{"য়ের", 2},
	{"ের", 2},
	{"তে", 3},
	{"কে", 3},
	{"রা", 3},
	{"র", 3},
	{"ে", 3},
}

// Bangla tokenizes on the Bengali Unicode block (U+0980–U+09FF), removes
// stop-words, and strips common inflectional suffixes. There is no case in
// the Bangla script, so no folding step is needed; zero-width joiners left
// behind by web scrapers are dropped.
type Bangla struct{}

func (Bangla) Lang() string { return LangBangla }

func (Bangla) Analyze(text string) []string {
	text = strings.Map(func(r rune) rune {
		if r == '\u200c' || r == '\u200d' {
			return -1
		}
		return r
	}, text)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isBanglaRune(r)
	})
	tokens := make([]string, 0, len(words)/2)
	for _, word := range words {
		if runeLen(word) < 2 {
			continue
		}
		if _, isStop := banglaStopWords[word]; isStop {
			continue
		}
		stemmed := stemBangla(word)
		if stemmed == "" {
			continue
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}

// IsBanglaText reports whether at least threshold of the runes in text fall
// in the Bengali block, the heuristic the corpus crawlers used to tag
// untagged articles.
func IsBanglaText(text string, threshold float64) bool {
	if text == "" {
		return false
	}
	var total, bangla int
	for _, r := range text {
		total++
		if isBanglaRune(r) {
			bangla++
		}
	}
	if total == 0 {
		return false
	}
	return float64(bangla)/float64(total) > threshold
}

func isBanglaRune(r rune) bool {
	return r >= 0x0980 && r <= 0x09FF
}

func stemBangla(word string) string {
	for _, rule := range banglaSuffixes {
		if strings.HasSuffix(word, rule.suffix) {
			stem := word[:len(word)-len(rule.suffix)]
			if runeLen(stem) >= rule.minRunes {
				return stem
			}
			return word
		}
	}
	return word
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
