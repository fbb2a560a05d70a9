// Package resolve turns free query text into map filters.
//
// Resolve is the primary parse: it recognises explicit map display commands
// ("show me all plants", "where are the leopards") and always yields a filter once a
// command matched. Extract is the lower-confidence keyword parse used when no command
// matched or when a RAG answer carried no geospatial results.
//
// Both functions are pure and safe for concurrent use.
package resolve

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/taxonomy"
)

// commandPatterns are tried in order; the first match consumes the whole query and
// its single group is the target noun phrase.
var commandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:show|display|find|locate)\s+(?:me\s+)?(?:all\s+)?(?:the\s+)?(.+?)(?:\s+on\s+(?:the\s+)?map)?$`),
	regexp.MustCompile(`^where\s+(?:are|is)\s+(?:all\s+)?(?:the\s+)?(.+?)(?:\s+on\s+(?:the\s+)?map)?$`),
	regexp.MustCompile(`^map\s+of\s+(?:all\s+)?(?:the\s+)?(.+?)$`),
}

// Resolve parses a direct map command. It returns false when text is not a command,
// which tells the caller to route the query elsewhere.
func Resolve(text string) (filter.Descriptor, bool) {
	target, ok := commandTarget(normalize(text))
	if !ok {
		return filter.None(), false
	}
	return resolveTarget(target), true
}

// IsCommand reports whether text matches one of the command patterns.
func IsCommand(text string) bool {
	_, ok := commandTarget(normalize(text))
	return ok
}

func commandTarget(q string) (string, bool) {
	for _, re := range commandPatterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		target := strings.TrimSpace(m[1])
		if target == "" || fillerOnly(target) {
			return "", false
		}
		return target, true
	}
	return "", false
}

// fillerWords never name a target on their own ("show me", "show me the map").
var fillerWords = map[string]struct{}{
	"me": {}, "us": {}, "all": {}, "the": {}, "a": {}, "an": {}, "on": {}, "map": {},
}

func fillerOnly(target string) bool {
	for _, w := range strings.Fields(target) {
		if _, ok := fillerWords[w]; !ok {
			return false
		}
	}
	return true
}

// resolveTarget maps a command target to a filter. It never returns None: an
// unrecognised target becomes a literal species filter.
func resolveTarget(target string) filter.Descriptor {
	switch target {
	case "plant", "plants":
		return filter.ByCategory(taxonomy.CategoryPlant)
	case "animal", "animals":
		return filter.ByCategory(taxonomy.CategoryAnimal)
	}

	if t, ok := taxonomy.SingularType(target); ok {
		return filter.ByType(t)
	}
	if t, ok := taxonomy.PluralType(target); ok {
		return filter.ByType(t)
	}
	if taxonomy.IsKnownSpecies(target) {
		return filter.BySpecies(target)
	}
	if s, ok := taxonomy.FirstSpeciesOverlapping(target); ok {
		return filter.BySpecies(s)
	}
	return filter.BySpecies(target)
}

// normalize lower-cases, collapses whitespace and strips trailing sentence
// punctuation. A Caser is not safe for concurrent use, so one is built per call.
func normalize(text string) string {
	q := cases.Lower(language.Und).String(text)
	q = strings.Join(strings.Fields(q), " ")
	return strings.TrimRight(q, "?.! ")
}
