package query

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/bioscout/internal/domain/observation"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
	"github.com/kailas-cloud/bioscout/internal/usecase/resolve"
)

// ObservationContext picks observations relevant to a free-text question using the
// keyword extractor. It grounds the fallback answerer on local data.
type ObservationContext struct {
	source mapsync.ObservationSource
}

// NewObservationContext creates a context provider over an observation source.
func NewObservationContext(source mapsync.ObservationSource) *ObservationContext {
	return &ObservationContext{source: source}
}

// Observations returns the records matching the extracted filter, or nothing when
// the question names no species, type or category.
func (c *ObservationContext) Observations(ctx context.Context, question string) ([]observation.Record, error) {
	f, ok := resolve.Extract(question)
	if !ok {
		return nil, nil
	}
	records, err := mapsync.Fetch(ctx, c.source, f)
	if err != nil {
		return nil, fmt.Errorf("list observations (%s): %w", f, err)
	}
	return records, nil
}
