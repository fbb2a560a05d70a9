package resolve

import (
	"testing"

	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/taxonomy"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  filter.Descriptor
		ok    bool
	}{
		{"known species", "Tell me about Chir Pine", filter.BySpecies("chir pine"), true},
		{"species beats category", "is tulsi a medicinal plant", filter.BySpecies("tulsi"), true},
		{"species list order", "wild date palm or date palm?", filter.BySpecies("wild date palm"), true},
		{"plant vocabulary", "what flora grows in the park", filter.ByCategory(taxonomy.CategoryPlant), true},
		{"animal vocabulary", "any wildlife near rawal lake", filter.ByCategory(taxonomy.CategoryAnimal), true},
		{"plant before animal", "plants and animals of margalla", filter.ByCategory(taxonomy.CategoryPlant), true},
		{"type keyword", "are there eagles around", filter.ByType(taxonomy.Bird), true},
		{"tree type", "which trees grow here", filter.ByType(taxonomy.Tree), true},
		{"type keyword inside a word", "tell me about the knowledge base", filter.ByType(taxonomy.Bird), true},
		{"type keyword inside another word", "share your thoughts on boarding", filter.ByType(taxonomy.Mammal), true},
		{"word inside known species", "any brush nearby", filter.BySpecies("bottle brush"), true},
		{"bare word", "Tell me about the Margalla hills", filter.BySpecies("margalla"), true},
		{"punctuation trimmed", "what about unicorns?", filter.BySpecies("unicorns"), true},
		{"only short and stop words", "who is he", filter.None(), false},
		{"empty", "  ", filter.None(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.query)
			if ok != tt.ok {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.query, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtract_AfterFailedResolve(t *testing.T) {
	q := "Tell me about Chir Pine"
	if _, ok := Resolve(q); ok {
		t.Fatal("not a display command")
	}
	got, ok := Extract(q)
	if !ok || got != filter.BySpecies("chir pine") {
		t.Errorf("Extract(%q) = %v, %v", q, got, ok)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	q := "what birds live near the lake"
	a, _ := Extract(q)
	b, _ := Extract(q)
	if a != b {
		t.Errorf("Extract not deterministic: %v vs %v", a, b)
	}
}
