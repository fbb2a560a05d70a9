package query

import (
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
)

// Stage is a step of the query lifecycle.
type Stage string

const (
	StageIdle                        Stage = "idle"
	StageParsingCommand              Stage = "parsing_command"
	StageDirectFilterApplied         Stage = "direct_filter_applied"
	StageFallbackExtractionAttempted Stage = "fallback_extraction_attempted"
	StageRAGDispatched               Stage = "rag_dispatched"
	StageResultsDisplayed            Stage = "results_displayed"
	// StageSuperseded ends a query whose results arrived after a newer dispatch.
	StageSuperseded Stage = "superseded"
	// StageFailed ends a query whose collaborator call failed.
	StageFailed Stage = "failed"
)

// Route names how a query was resolved; used as a metric label.
type Route string

const (
	RouteDirect        Route = "direct"
	RouteExtraction    Route = "extraction"
	RouteRAG           Route = "rag"
	RouteRAGExtraction Route = "rag_extraction"
)

// User-visible messages.
const (
	MessageNoMatches          = "No matching observations found"
	MessageNotUnderstood      = "I couldn't find anything to show on the map for that query"
	MessageObservationsFailed = "Observations are unavailable right now, please try again later"
	MessageQueryFailed        = "Sorry, I couldn't answer that right now, please try again later"
)

// Outcome reports what one submission did.
type Outcome struct {
	SessionID        string
	Query            string
	Route            Route
	Stages           []Stage
	Filter           filter.Descriptor
	Answer           string
	UsingFallback    bool
	KnowledgeSources []string
	Displayed        int
	Skipped          int
	Message          string
	Sequence         mapsync.Ticket
}

// Stage returns the terminal stage.
func (o Outcome) Stage() Stage {
	if len(o.Stages) == 0 {
		return StageIdle
	}
	return o.Stages[len(o.Stages)-1]
}

// Superseded reports whether a newer dispatch replaced this one before it committed.
func (o Outcome) Superseded() bool { return o.Stage() == StageSuperseded }

// Failed reports whether a collaborator error ended the query.
func (o Outcome) Failed() bool { return o.Stage() == StageFailed }

func (o *Outcome) enter(s Stage) { o.Stages = append(o.Stages, s) }

func (o Outcome) outcomeLabel() string {
	switch o.Stage() {
	case StageFailed:
		return "failed"
	case StageSuperseded:
		return "superseded"
	}
	if o.Displayed == 0 {
		return "empty"
	}
	return "displayed"
}
