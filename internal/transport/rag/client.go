// Package rag is the HTTP client of the retrieval-augmented question answering
// collaborator.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/answer"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
	"github.com/kailas-cloud/bioscout/internal/transport/upstream"
)

// DefaultTimeout bounds one question; retrieval plus generation is slow.
const DefaultTimeout = 30 * time.Second

// Config configures the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client asks questions via POST /queries.
type Client struct {
	api *upstream.Client
}

// New creates a RAG client.
func New(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	api, err := upstream.New(upstream.Config{
		Name:       "rag",
		BaseURL:    cfg.BaseURL,
		Timeout:    timeout,
		Sentinel:   domain.ErrQueryUnavailable,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("rag client: %w", err)
	}
	return &Client{api: api}, nil
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Response         string        `json:"response"`
	Success          *bool         `json:"success"`
	Observations     []resultEntry `json:"observations"`
	UsingFallback    bool          `json:"using_fallback"`
	KnowledgeSources []string      `json:"knowledge_sources"`
}

// Ask implements query.Answerer.
func (c *Client) Ask(ctx context.Context, question string) (answer.Answer, error) {
	var resp queryResponse
	if err := c.api.PostJSON(ctx, "queries", queryRequest{Query: question}, &resp); err != nil {
		return answer.Answer{}, fmt.Errorf("ask: %w", err)
	}
	if resp.Success != nil && !*resp.Success {
		return answer.Answer{}, fmt.Errorf("%w: rag reported failure: %s", domain.ErrQueryUnavailable, resp.Response)
	}

	records := make([]observation.Record, 0, len(resp.Observations))
	for _, e := range resp.Observations {
		records = append(records, e.record)
	}
	return answer.Answer{
		Text:             resp.Response,
		Observations:     records,
		UsingFallback:    resp.UsingFallback,
		KnowledgeSources: resp.KnowledgeSources,
	}, nil
}

// HealthCheck calls GET /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.api.GetJSON(ctx, "health", nil, nil); err != nil {
		return fmt.Errorf("rag health: %w", err)
	}
	return nil
}

// resultEntry decodes either a GeoJSON Feature or a plain observation record.
type resultEntry struct {
	record observation.Record
}

type feature struct {
	Type     string `json:"type"`
	Geometry struct {
		Coordinates observation.Coordinates `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		ID       observation.ID `json:"id"`
		Species  string         `json:"species"`
		Date     string         `json:"date"`
		Location string         `json:"location"`
		Notes    string         `json:"notes"`
		ImageURL string         `json:"image_url"`
		Category string         `json:"category"`
	} `json:"properties"`
}

func (e *resultEntry) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err //nolint:wrapcheck // wrapped by the caller
	}

	if !strings.EqualFold(probe.Type, "Feature") {
		return json.Unmarshal(data, &e.record) //nolint:wrapcheck // wrapped by the caller
	}

	var f feature
	if err := json.Unmarshal(data, &f); err != nil {
		return err //nolint:wrapcheck // wrapped by the caller
	}
	e.record = observation.Record{
		ID:           f.Properties.ID,
		SpeciesName:  f.Properties.Species,
		Coordinates:  f.Geometry.Coordinates,
		Location:     f.Properties.Location,
		DateObserved: f.Properties.Date,
		Notes:        f.Properties.Notes,
		ImageURL:     f.Properties.ImageURL,
		Category:     f.Properties.Category,
	}
	return nil
}
