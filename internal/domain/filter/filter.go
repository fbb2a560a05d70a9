package filter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/taxonomy"
)

// Kind names the single field a Descriptor selects on.
type Kind string

const (
	// KindNone selects everything.
	KindNone     Kind = ""
	KindSpecies  Kind = "species"
	KindType     Kind = "type"
	KindCategory Kind = "category"
)

// Descriptor is a map filter with at most one of species, type or category set.
// The zero value selects everything.
type Descriptor struct {
	kind  Kind
	value string
}

// None returns the select-everything descriptor.
func None() Descriptor { return Descriptor{} }

// BySpecies filters on a species name. A blank name yields None.
func BySpecies(name string) Descriptor {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Descriptor{}
	}
	return Descriptor{kind: KindSpecies, value: name}
}

// ByType filters on a derived species type.
func ByType(t taxonomy.SpeciesType) Descriptor {
	return Descriptor{kind: KindType, value: string(t)}
}

// ByCategory filters on plant or animal.
func ByCategory(c taxonomy.Category) Descriptor {
	return Descriptor{kind: KindCategory, value: string(c)}
}

// New validates and creates a Descriptor from an untyped kind/value pair.
func New(kind Kind, value string) (Descriptor, error) {
	switch kind {
	case KindNone:
		if strings.TrimSpace(value) != "" {
			return Descriptor{}, fmt.Errorf("%w: value %q without a filter kind", domain.ErrInvalidFilter, value)
		}
		return None(), nil
	case KindSpecies:
		d := BySpecies(value)
		if d.IsNone() {
			return Descriptor{}, fmt.Errorf("%w: species name is required", domain.ErrInvalidFilter)
		}
		return d, nil
	case KindType:
		t, ok := taxonomy.ParseSpeciesType(value)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: unknown species type %q", domain.ErrInvalidFilter, value)
		}
		return ByType(t), nil
	case KindCategory:
		c, ok := taxonomy.ParseCategory(value)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: category must be plant or animal, got %q", domain.ErrInvalidFilter, value)
		}
		return ByCategory(c), nil
	default:
		return Descriptor{}, fmt.Errorf("%w: unknown filter kind %q", domain.ErrInvalidFilter, kind)
	}
}

// Kind returns the selected field, KindNone for select-everything.
func (d Descriptor) Kind() Kind { return d.kind }

// Value returns the raw filter value.
func (d Descriptor) Value() string { return d.value }

// IsNone reports whether the descriptor selects everything.
func (d Descriptor) IsNone() bool { return d.kind == KindNone }

// Species returns the species value, or "" for other kinds.
func (d Descriptor) Species() string {
	if d.kind != KindSpecies {
		return ""
	}
	return d.value
}

// Type returns the species type value, or "" for other kinds.
func (d Descriptor) Type() taxonomy.SpeciesType {
	if d.kind != KindType {
		return ""
	}
	return taxonomy.SpeciesType(d.value)
}

// Category returns the category value, or "" for other kinds.
func (d Descriptor) Category() taxonomy.Category {
	if d.kind != KindCategory {
		return ""
	}
	return taxonomy.Category(d.value)
}

// Params renders the descriptor as observation query parameters (at most one).
func (d Descriptor) Params() url.Values {
	v := url.Values{}
	if !d.IsNone() {
		v.Set(string(d.kind), d.value)
	}
	return v
}

func (d Descriptor) String() string {
	if d.IsNone() {
		return "all"
	}
	return string(d.kind) + "=" + d.value
}

// Parse reads the String form back: "all" (or blank) or "kind=value".
func Parse(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return None(), nil
	}
	kind, value, ok := strings.Cut(s, "=")
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: expected kind=value, got %q", domain.ErrInvalidFilter, s)
	}
	return New(Kind(strings.TrimSpace(kind)), value)
}

// MarshalJSON encodes the descriptor as {"species": "..."} style, {} for None.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	if d.IsNone() {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string{string(d.kind): d.value}) //nolint:wrapcheck // plain map encoding
}

// UnmarshalJSON decodes the wire shape and rejects combined fields.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode filter: %w", err)
	}
	if len(raw) > 1 {
		return fmt.Errorf("%w: species, type and category are mutually exclusive", domain.ErrInvalidFilter)
	}
	for k, v := range raw {
		parsed, err := New(Kind(k), v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	*d = None()
	return nil
}
