// Package taxonomy holds the static species tables shared by the query parsers and
// the map layer: the species-type keyword ladder, the known species list and the
// plant/animal category vocabularies.
//
// All tables are ordered and matched first-match-wins. Reordering entries changes
// classification results for names that match more than one list.
package taxonomy

import "strings"

// SpeciesType is the coarse type derived from a species name.
type SpeciesType string

const (
	Bird      SpeciesType = "bird"
	Mammal    SpeciesType = "mammal"
	Reptile   SpeciesType = "reptile"
	Fish      SpeciesType = "fish"
	Amphibian SpeciesType = "amphibian"
	Tree      SpeciesType = "tree"
	Plant     SpeciesType = "plant"
	// Default is returned when no keyword matches.
	Default SpeciesType = "default"
)

// Category is the plant/animal split used by category filters.
type Category string

const (
	CategoryPlant  Category = "plant"
	CategoryAnimal Category = "animal"
)

// typeKeywords is the single ordered ladder used both for classifying observation
// names and for the keyword extractor. Bird precedes fish so "kingfisher" is a bird.
var typeKeywords = []struct {
	typ      SpeciesType
	keywords []string
}{
	{Bird, []string{
		"bird", "eagle", "hawk", "owl", "sparrow", "parrot", "pigeon", "crow", "kingfisher",
		"duck", "griffon", "vulture", "myna", "bulbul", "pheasant", "partridge",
	}},
	{Mammal, []string{
		"mammal", "leopard", "deer", "fox", "bear", "boar", "monkey", "macaque", "jackal",
		"porcupine", "pangolin", "mongoose", "squirrel", "goral", "hare",
	}},
	{Reptile, []string{"reptile", "snake", "cobra", "lizard", "turtle", "tortoise", "viper", "krait", "gecko"}},
	{Fish, []string{"fish", "carp", "trout", "mahseer"}},
	{Amphibian, []string{"amphibian", "frog", "toad", "salamander"}},
	{Tree, []string{
		"tree", "pine", "cedar", "oak", "palm", "deodar", "shisham", "acacia", "mulberry",
		"banyan", "ficus", "neem", "amaltas", "jacaranda", "arjun", "siris", "phulai",
	}},
}

// plantKeywords mark a name as a (non-tree) plant once the type ladder found nothing.
var plantKeywords = []string{
	"plant", "flower", "shrub", "herb", "grass", "fern", "vine", "bush", "conifer", "maple",
	"tulsi", "aloe vera", "ajwain", "mint", "sage", "bottle brush", "lily", "rose", "daisy",
}

// knownSpecies is the canonical species list used for exact and substring matching.
// Longer names precede names they contain ("wild date palm" before "date palm").
var knownSpecies = []string{
	"chir pine",
	"blue pine",
	"himalayan cedar",
	"deodar",
	"phulai",
	"acacia",
	"shisham",
	"wild date palm",
	"date palm",
	"amaltas",
	"jacaranda",
	"bottle brush",
	"silver oak",
	"paper mulberry",
	"aloe vera",
	"tulsi",
	"neem",
	"leopard",
	"barking deer",
	"rhesus macaque",
	"golden jackal",
	"indian pangolin",
	"grey goral",
	"wild boar",
	"red fox",
	"himalayan griffon",
	"kalij pheasant",
	"monitor lizard",
	"mahseer",
}

// Query vocabularies for the category step of the keyword extractor. "tree" is
// deliberately absent so tree queries reach the type step.
var (
	plantQueryKeywords  = []string{"plant", "flora", "vegetation", "botanical", "flower", "shrub", "herb"}
	animalQueryKeywords = []string{"animal", "wildlife", "fauna", "creature"}
)

// singularTypes are the types a map command may name directly.
var singularTypes = []SpeciesType{Mammal, Bird, Reptile, Fish, Amphibian, Tree}

var pluralTypes = map[string]SpeciesType{
	"mammals":    Mammal,
	"birds":      Bird,
	"reptiles":   Reptile,
	"fishes":     Fish,
	"amphibians": Amphibian,
	"trees":      Tree,
}

// Classify derives the species type of a name. Matching is case-insensitive substring
// search over the type ladder, then the plant keywords.
func Classify(speciesName string) SpeciesType {
	name := strings.ToLower(speciesName)
	if strings.TrimSpace(name) == "" {
		return Default
	}
	for _, entry := range typeKeywords {
		if containsAny(name, entry.keywords) {
			return entry.typ
		}
	}
	if containsAny(name, plantKeywords) {
		return Plant
	}
	return Default
}

// CategoryOf maps a species name to plant or animal. Names that classify as neither
// plant nor tree are treated as animals.
func CategoryOf(speciesName string) Category {
	switch Classify(speciesName) {
	case Tree, Plant:
		return CategoryPlant
	default:
		return CategoryAnimal
	}
}

// KnownSpecies returns a copy of the canonical species list in match order.
func KnownSpecies() []string {
	out := make([]string, len(knownSpecies))
	copy(out, knownSpecies)
	return out
}

// IsKnownSpecies reports whether name equals a known species entry (lowercase).
func IsKnownSpecies(name string) bool {
	for _, s := range knownSpecies {
		if s == name {
			return true
		}
	}
	return false
}

// FirstSpeciesIn returns the first known species that appears as a substring of text.
func FirstSpeciesIn(text string) (string, bool) {
	for _, s := range knownSpecies {
		if strings.Contains(text, s) {
			return s, true
		}
	}
	return "", false
}

// FirstSpeciesOverlapping returns the first known species that contains target or is
// contained by it.
func FirstSpeciesOverlapping(target string) (string, bool) {
	if target == "" {
		return "", false
	}
	for _, s := range knownSpecies {
		if strings.Contains(s, target) || strings.Contains(target, s) {
			return s, true
		}
	}
	return "", false
}

// FirstSpeciesContaining returns the first known species that contains fragment.
func FirstSpeciesContaining(fragment string) (string, bool) {
	if fragment == "" {
		return "", false
	}
	for _, s := range knownSpecies {
		if strings.Contains(s, fragment) {
			return s, true
		}
	}
	return "", false
}

// SingularType reports whether word names one of the six directly searchable types.
func SingularType(word string) (SpeciesType, bool) {
	for _, t := range singularTypes {
		if string(t) == word {
			return t, true
		}
	}
	return "", false
}

// PluralType maps a plural type word ("birds") to its singular type.
func PluralType(word string) (SpeciesType, bool) {
	t, ok := pluralTypes[word]
	return t, ok
}

// TypeMentionedIn returns the first type whose keyword list has a keyword in text.
// Only the six ladder types take part; plant keywords belong to the category step.
func TypeMentionedIn(text string) (SpeciesType, bool) {
	for _, entry := range typeKeywords {
		if containsAny(text, entry.keywords) {
			return entry.typ, true
		}
	}
	return "", false
}

// CategoryMentionedIn checks the plant vocabulary, then the animal vocabulary.
func CategoryMentionedIn(text string) (Category, bool) {
	if containsAny(text, plantQueryKeywords) {
		return CategoryPlant, true
	}
	if containsAny(text, animalQueryKeywords) {
		return CategoryAnimal, true
	}
	return "", false
}

// ParseSpeciesType validates a type name coming from an API caller.
func ParseSpeciesType(s string) (SpeciesType, bool) {
	t := SpeciesType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Bird, Mammal, Reptile, Fish, Amphibian, Tree, Plant:
		return t, true
	}
	return "", false
}

// ParseCategory validates a category name coming from an API caller.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryPlant, CategoryAnimal:
		return c, true
	}
	return "", false
}

// containsAny matches raw substrings, not words: "knowledge" mentions an owl.
func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
