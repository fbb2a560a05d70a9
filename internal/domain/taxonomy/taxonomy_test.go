package taxonomy

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want SpeciesType
	}{
		{"Common Leopard", Mammal},
		{"Barking Deer", Mammal},
		{"Himalayan Griffon", Bird},
		{"Kalij Pheasant", Bird},
		{"Spectacled Cobra", Reptile},
		{"Monitor Lizard", Reptile},
		{"Golden Mahseer", Fish},
		{"Indian Bullfrog", Amphibian},
		{"Chir Pine", Tree},
		{"Silver Oak", Tree},
		{"Wild Date Palm", Tree},
		{"Tulsi", Plant},
		{"Aloe Vera", Plant},
		{"Wild Rose", Plant},
		{"Unicorn", Default},
		{"", Default},
		{"   ", Default},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// "kingfisher" matches both the bird and fish lists; bird is checked first.
	if got := Classify("Pied Kingfisher"); got != Bird {
		t.Errorf("expected bird, got %q", got)
	}
	// "fish owl" matches bird ("owl") and fish ("fish"); bird wins on table order.
	if got := Classify("Brown Fish Owl"); got != Bird {
		t.Errorf("expected bird, got %q", got)
	}
	// A tree keyword beats the plant list.
	if got := Classify("flowering cedar"); got != Tree {
		t.Errorf("expected tree, got %q", got)
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"chir pine", CategoryPlant},
		{"tulsi", CategoryPlant},
		{"leopard", CategoryAnimal},
		{"unknown thing", CategoryAnimal},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.name); got != tt.want {
			t.Errorf("CategoryOf(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestKnownSpecies_ReturnsCopy(t *testing.T) {
	list := KnownSpecies()
	if len(list) == 0 {
		t.Fatal("expected non-empty species list")
	}
	list[0] = "mutated"
	if KnownSpecies()[0] == "mutated" {
		t.Error("KnownSpecies must not expose the backing array")
	}
}

func TestKnownSpecies_Lowercase(t *testing.T) {
	for _, s := range KnownSpecies() {
		for _, r := range s {
			if r >= 'A' && r <= 'Z' {
				t.Errorf("species %q is not lowercase", s)
				break
			}
		}
	}
}

func TestFirstSpeciesIn_ListOrder(t *testing.T) {
	got, ok := FirstSpeciesIn("is the wild date palm native here")
	if !ok || got != "wild date palm" {
		t.Errorf("got %q, %v; want wild date palm", got, ok)
	}
	if _, ok := FirstSpeciesIn("nothing relevant"); ok {
		t.Error("expected no match")
	}
}

func TestFirstSpeciesOverlapping(t *testing.T) {
	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"leopards", "leopard", true},
		{"pine", "chir pine", true},
		{"date palm trees", "date palm", true},
		{"macaque", "rhesus macaque", true},
		{"unicorns", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := FirstSpeciesOverlapping(tt.target)
		if tt.ok != ok {
			t.Errorf("FirstSpeciesOverlapping(%q) ok = %v, want %v", tt.target, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("FirstSpeciesOverlapping(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestSingularAndPluralTypes(t *testing.T) {
	if typ, ok := SingularType("amphibian"); !ok || typ != Amphibian {
		t.Errorf("SingularType(amphibian) = %q, %v", typ, ok)
	}
	if _, ok := SingularType("plant"); ok {
		t.Error("plant is a category, not a singular type")
	}
	if typ, ok := PluralType("mammals"); !ok || typ != Mammal {
		t.Errorf("PluralType(mammals) = %q, %v", typ, ok)
	}
	if _, ok := PluralType("mammal"); ok {
		t.Error("singular word must not resolve as plural")
	}
}

func TestTypeMentionedIn(t *testing.T) {
	tests := []struct {
		text string
		want SpeciesType
		ok   bool
	}{
		{"any eagles around rawal lake", Bird, true},
		{"are there snakes in the hills", Reptile, true},
		{"frogs after the rain", Amphibian, true},
		{"old oak trees", Tree, true},
		{"tell me something", "", false},
		// Keywords match inside words.
		{"tell me about the knowledge base", Bird, true},
		{"share your thoughts on boarding", Mammal, true},
	}
	for _, tt := range tests {
		got, ok := TypeMentionedIn(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("TypeMentionedIn(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCategoryMentionedIn(t *testing.T) {
	if c, ok := CategoryMentionedIn("local flora of the park"); !ok || c != CategoryPlant {
		t.Errorf("got %q, %v", c, ok)
	}
	if c, ok := CategoryMentionedIn("wildlife near the lake"); !ok || c != CategoryAnimal {
		t.Errorf("got %q, %v", c, ok)
	}
	// plant vocabulary is checked first
	if c, ok := CategoryMentionedIn("plants and animals"); !ok || c != CategoryPlant {
		t.Errorf("got %q, %v", c, ok)
	}
	if _, ok := CategoryMentionedIn("trees"); ok {
		t.Error("tree words belong to the type step")
	}
}

func TestParseSpeciesTypeAndCategory(t *testing.T) {
	if typ, ok := ParseSpeciesType(" Bird "); !ok || typ != Bird {
		t.Errorf("ParseSpeciesType = %q, %v", typ, ok)
	}
	if _, ok := ParseSpeciesType("default"); ok {
		t.Error("default is not a filterable type")
	}
	if c, ok := ParseCategory("ANIMAL"); !ok || c != CategoryAnimal {
		t.Errorf("ParseCategory = %q, %v", c, ok)
	}
	if _, ok := ParseCategory("fungus"); ok {
		t.Error("unexpected category")
	}
}
