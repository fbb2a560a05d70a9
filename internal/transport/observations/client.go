// Package observations is the HTTP client of the observations collaborator.
package observations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
	"github.com/kailas-cloud/bioscout/internal/transport/upstream"
)

// DefaultTimeout bounds one observations request.
const DefaultTimeout = 10 * time.Second

// Config configures the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client fetches observations with at most one filter parameter.
type Client struct {
	api *upstream.Client
}

// New creates an observations client.
func New(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	api, err := upstream.New(upstream.Config{
		Name:       "observations",
		BaseURL:    cfg.BaseURL,
		Timeout:    timeout,
		Sentinel:   domain.ErrObservationsUnavailable,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("observations client: %w", err)
	}
	return &Client{api: api}, nil
}

// List implements mapsync.ObservationSource: GET /observations?{species|type|category}.
func (c *Client) List(ctx context.Context, f filter.Descriptor) ([]observation.Record, error) {
	var body listResponse
	if err := c.api.GetJSON(ctx, "observations", f.Params(), &body); err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	return body.Observations, nil
}

// HealthCheck calls GET /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.api.GetJSON(ctx, "health", nil, nil); err != nil {
		return fmt.Errorf("observations health: %w", err)
	}
	return nil
}

// listResponse accepts {"observations": [...]} as well as a bare array.
type listResponse struct {
	Observations []observation.Record
}

func (r *listResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &r.Observations) //nolint:wrapcheck // wrapped by the caller
	}
	var wrapped struct {
		Observations []observation.Record `json:"observations"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err //nolint:wrapcheck // wrapped by the caller
	}
	r.Observations = wrapped.Observations
	return nil
}
