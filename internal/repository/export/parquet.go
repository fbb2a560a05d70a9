// Package export writes observation listings as Parquet files for offline analysis.
package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/bioscout/internal/domain/observation"
)

// Row is the Parquet schema of one exported observation.
type Row struct {
	ID           string   `parquet:"id"`
	SpeciesName  string   `parquet:"species_name"`
	SpeciesType  string   `parquet:"species_type"`
	Category     string   `parquet:"category"`
	Longitude    *float64 `parquet:"longitude,optional"`
	Latitude     *float64 `parquet:"latitude,optional"`
	Location     string   `parquet:"location"`
	DateObserved string   `parquet:"date_observed"`
	Notes        string   `parquet:"notes"`
	ImageURL     string   `parquet:"image_url"`
}

// RowOf flattens a record. The species type is the derived one; records without
// valid coordinates keep null longitude and latitude.
func RowOf(r observation.Record) Row {
	row := Row{
		ID:           string(r.ID),
		SpeciesName:  r.SpeciesName,
		SpeciesType:  string(r.Type()),
		Category:     r.Category,
		Location:     r.Location,
		DateObserved: r.DateObserved,
		Notes:        r.Notes,
		ImageURL:     r.ImageURL,
	}
	if p, ok := r.Point(); ok {
		lon, lat := p.Lon, p.Lat
		row.Longitude, row.Latitude = &lon, &lat
	}
	return row
}

// WriteParquet encodes records to w and returns the number of rows written.
func WriteParquet(w io.Writer, records []observation.Record) (int, error) {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = RowOf(r)
	}

	pw := parquet.NewGenericWriter[Row](w)
	n, err := pw.Write(rows)
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return n, fmt.Errorf("close parquet writer: %w", err)
	}
	return n, nil
}
