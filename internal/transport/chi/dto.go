package chi

import (
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
	queryuc "github.com/kailas-cloud/bioscout/internal/usecase/query"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

const (
	ErrorResponseCodeBadRequest              ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized            ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed        ErrorResponseCode = "validation_failed"
	ErrorResponseCodeSessionNotFound         ErrorResponseCode = "session_not_found"
	ErrorResponseCodeMarkerNotFound          ErrorResponseCode = "marker_not_found"
	ErrorResponseCodeObservationsUnavailable ErrorResponseCode = "observations_unavailable"
	ErrorResponseCodeQueryUnavailable        ErrorResponseCode = "query_unavailable"
	ErrorResponseCodeInternalError           ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// QueryRequest is the body of POST /sessions/{session}/queries.
type QueryRequest struct {
	Query string `json:"query"`
}

// SessionCreatedResponse is returned by POST /sessions.
type SessionCreatedResponse struct {
	ID string `json:"id"`
}

// Marker is one map marker.
type Marker struct {
	ID          string     `json:"id"`
	Species     string     `json:"species"`
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
	Location    string     `json:"location,omitempty"`
	Date        string     `json:"date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
}

// Bounds is a viewport as [[south, west], [north, east]].
type Bounds [2][2]float64

// SessionResponse is the current state of a map session.
type SessionResponse struct {
	ID       string            `json:"id"`
	Markers  []Marker          `json:"markers"`
	Bounds   *Bounds           `json:"bounds"`
	Filter   filter.Descriptor `json:"filter"`
	Flashing bool              `json:"flashing"`
	Sequence uint64            `json:"sequence"`
}

// QueryResponse reports the outcome of a query submission.
type QueryResponse struct {
	SessionID        string            `json:"session_id"`
	Query            string            `json:"query"`
	Route            string            `json:"route"`
	Stage            string            `json:"stage"`
	Stages           []string          `json:"stages"`
	Filter           filter.Descriptor `json:"filter"`
	Answer           string            `json:"answer,omitempty"`
	UsingFallback    bool              `json:"using_fallback"`
	KnowledgeSources []string          `json:"knowledge_sources,omitempty"`
	Displayed        int               `json:"displayed"`
	Skipped          int               `json:"skipped"`
	Message          string            `json:"message,omitempty"`
	Sequence         uint64            `json:"sequence"`
}

// FilterResponse is returned by GET /filters.
type FilterResponse struct {
	Query   string            `json:"query"`
	Mode    string            `json:"mode"`
	Matched bool              `json:"matched"`
	Filter  filter.Descriptor `json:"filter"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func sessionToResponse(v mapsync.View) SessionResponse {
	markers := make([]Marker, len(v.Markers))
	for i, m := range v.Markers {
		markers[i] = Marker{
			ID:          m.ID,
			Species:     m.Species,
			Type:        string(m.Type),
			Coordinates: m.Point.Pair(),
			Location:    m.Location,
			Date:        m.Date,
			Notes:       m.Notes,
			ImageURL:    m.ImageURL,
		}
	}

	resp := SessionResponse{
		ID:       v.ID,
		Markers:  markers,
		Filter:   v.Filter,
		Flashing: v.Flashing,
		Sequence: uint64(v.Sequence),
	}
	if !v.Bounds.IsEmpty() {
		resp.Bounds = &Bounds{
			{v.Bounds.South, v.Bounds.West},
			{v.Bounds.North, v.Bounds.East},
		}
	}
	return resp
}

func outcomeToResponse(o queryuc.Outcome) QueryResponse {
	stages := make([]string, len(o.Stages))
	for i, s := range o.Stages {
		stages[i] = string(s)
	}
	return QueryResponse{
		SessionID:        o.SessionID,
		Query:            o.Query,
		Route:            string(o.Route),
		Stage:            string(o.Stage()),
		Stages:           stages,
		Filter:           o.Filter,
		Answer:           o.Answer,
		UsingFallback:    o.UsingFallback,
		KnowledgeSources: o.KnowledgeSources,
		Displayed:        o.Displayed,
		Skipped:          o.Skipped,
		Message:          o.Message,
		Sequence:         uint64(o.Sequence),
	}
}
