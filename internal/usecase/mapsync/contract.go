package mapsync

import (
	"context"

	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
)

// ObservationSource fetches observations with at most one filter field applied.
// A None descriptor fetches everything.
type ObservationSource interface {
	List(ctx context.Context, f filter.Descriptor) ([]observation.Record, error)
}
