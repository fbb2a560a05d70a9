// Package upstream is the JSON-over-HTTP client shared by the collaborator clients.
// Every call runs under a per-client timeout, is counted in the collaborator
// metrics and maps failures onto the collaborator's domain sentinel.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/metrics"
)

const (
	// DefaultTimeout applies when Config.Timeout is zero.
	DefaultTimeout = 10 * time.Second

	defaultUserAgent = "bioscout"
	// maxErrorBody bounds how much of an error response is kept in the message.
	maxErrorBody = 512
)

// Config configures a Client.
type Config struct {
	// Name labels metrics and errors, e.g. "observations".
	Name      string
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Sentinel is wrapped by every error the client returns.
	Sentinel error
	// HTTPClient overrides the underlying client (tests inject mock transports).
	HTTPClient *http.Client
}

// Client performs JSON requests against one collaborator.
type Client struct {
	name      string
	base      *url.URL
	timeout   time.Duration
	userAgent string
	sentinel  error
	http      *http.Client
}

// New validates the config and creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("upstream client name is required")
	}
	if cfg.Sentinel == nil {
		return nil, fmt.Errorf("%s: sentinel error is required", cfg.Name)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", cfg.Name, cfg.BaseURL)
	}

	c := &Client{
		name:      cfg.Name,
		base:      base,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		sentinel:  cfg.Sentinel,
		http:      cfg.HTTPClient,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// Name returns the collaborator name.
func (c *Client) Name() string { return c.name }

// GetJSON issues GET base+path?query and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON issues POST base+path with a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.CollaboratorRequestDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollaboratorRequestsTotal.WithLabelValues(c.name, "error").Inc()
		return fmt.Errorf("%w: %s %s: %w", c.sentinel, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.CollaboratorRequestsTotal.WithLabelValues(c.name, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewUpstreamError(c.name, resp.StatusCode, errorMessage(resp.Body), c.sentinel)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", c.sentinel, path, err)
	}
	return nil
}

func (c *Client) newRequest(
	ctx context.Context, method, path string, query url.Values, body any,
) (*http.Request, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from an error body,
// falling back to the truncated raw body.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "success"
	}
}
