package resolve

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/taxonomy"
)

// minFallbackWordLen is the shortest word the single-word fallback considers.
const minFallbackWordLen = 4

// stopwords are skipped by the single-word fallback. Only words of four or more
// letters need listing.
var stopwords = map[string]struct{}{
	"what": {}, "where": {}, "which": {}, "when": {}, "whose": {}, "who's": {},
	"there": {}, "their": {}, "them": {}, "they": {}, "these": {}, "those": {},
	"this": {}, "that": {}, "some": {}, "many": {}, "much": {}, "more": {},
	"most": {}, "every": {}, "each": {}, "about": {}, "tell": {}, "show": {},
	"find": {}, "have": {}, "does": {}, "with": {}, "from": {}, "near": {},
	"around": {}, "info": {}, "information": {}, "know": {}, "please": {},
	"could": {}, "would": {}, "should": {}, "your": {}, "here": {}, "been": {},
	"seen": {}, "were": {}, "into": {}, "than": {}, "like": {}, "also": {},
}

// Extract derives a best-effort filter from free text. Steps run in order and the
// first hit wins: a known species named anywhere in the text, plant vocabulary,
// animal vocabulary, a species type keyword, then the first meaningful word.
// It returns false only when every step came up empty.
func Extract(text string) (filter.Descriptor, bool) {
	q := normalize(text)
	if q == "" {
		return filter.None(), false
	}

	if s, ok := taxonomy.FirstSpeciesIn(q); ok {
		return filter.BySpecies(s), true
	}
	if c, ok := taxonomy.CategoryMentionedIn(q); ok {
		return filter.ByCategory(c), true
	}
	if t, ok := taxonomy.TypeMentionedIn(q); ok {
		return filter.ByType(t), true
	}

	for _, raw := range strings.Fields(q) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) < minFallbackWordLen {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		if s, ok := taxonomy.FirstSpeciesContaining(word); ok {
			return filter.BySpecies(s), true
		}
		return filter.BySpecies(word), true
	}
	return filter.None(), false
}
