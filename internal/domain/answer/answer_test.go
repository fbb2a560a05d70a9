package answer

import (
	"testing"

	"github.com/kailas-cloud/bioscout/internal/domain/geo"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
)

func TestGeospatial(t *testing.T) {
	a := Answer{Observations: []observation.Record{
		{SpeciesName: "Red Fox", Coordinates: observation.At(geo.Point{Lon: 73.1, Lat: 33.7})},
		{SpeciesName: "No Coordinates"},
	}}
	if got := a.Geospatial(); got != 1 {
		t.Errorf("Geospatial() = %d, want 1", got)
	}
	if got := (Answer{Text: "only text"}).Geospatial(); got != 0 {
		t.Errorf("Geospatial() = %d, want 0", got)
	}
}
