package observation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/bioscout/internal/domain/geo"
	"github.com/kailas-cloud/bioscout/internal/domain/taxonomy"
)

// Record is an observation owned by the observations service. The map layer only
// keeps transient copies.
type Record struct {
	ID           ID          `json:"id,omitempty"`
	SpeciesName  string      `json:"species_name"`
	Coordinates  Coordinates `json:"coordinates"`
	Location     string      `json:"location,omitempty"`
	DateObserved string      `json:"date_observed,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	ImageURL     string      `json:"image_url,omitempty"`
	Category     string      `json:"category,omitempty"`
	SpeciesType  string      `json:"species_type,omitempty"`
	HabitatType  string      `json:"habitat_type,omitempty"`
}

// ID is an observation identifier. Backends emit it as a string or an integer.
type ID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode observation id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode observation id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Type returns the species type derived from the species name. The stored
// species_type field is ignored so map and parser agree on one taxonomy.
func (r Record) Type() taxonomy.SpeciesType {
	return taxonomy.Classify(r.SpeciesName)
}

// Point returns the record position, false when coordinates are missing or invalid.
func (r Record) Point() (geo.Point, bool) {
	return r.Coordinates.Point()
}

// MatchesSpecies reports whether the record species contains name (case-insensitive).
func (r Record) MatchesSpecies(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.SpeciesName), name)
}

// Coordinates is a tolerant [longitude, latitude] pair. Malformed input decodes to an
// invalid value instead of an error so one bad record never fails a whole batch.
type Coordinates struct {
	point geo.Point
	valid bool
}

// At creates valid coordinates from a point.
func At(p geo.Point) Coordinates {
	return Coordinates{point: p, valid: geo.ValidateCoordinates(p.Lat, p.Lon)}
}

// Point returns the position and whether it is usable.
func (c Coordinates) Point() (geo.Point, bool) {
	return c.point, c.valid
}

// MarshalJSON encodes valid coordinates as [lon, lat] and invalid ones as null.
func (c Coordinates) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.point.Pair()) //nolint:wrapcheck // fixed-size float array
}

// UnmarshalJSON accepts [lon, lat, ...] or a JSON string holding that array, the way
// CSV-backed deployments serialise coordinates.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	*c = Coordinates{}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil //nolint:nilerr // malformed coordinates mark the record unusable
		}
		data = []byte(s)
	}

	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) < 2 {
		return nil //nolint:nilerr // see above
	}
	*c = At(geo.Point{Lon: pair[0], Lat: pair[1]})
	return nil
}
