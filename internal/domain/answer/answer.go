// Package answer holds the reply of a question-answering collaborator.
package answer

import "github.com/kailas-cloud/bioscout/internal/domain/observation"

// Answer is a natural-language reply plus the observations it refers to.
type Answer struct {
	Text             string
	Observations     []observation.Record
	UsingFallback    bool
	KnowledgeSources []string
}

// Geospatial returns the number of observations with usable coordinates.
func (a Answer) Geospatial() int {
	n := 0
	for _, r := range a.Observations {
		if _, ok := r.Point(); ok {
			n++
		}
	}
	return n
}
