package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/kailas-cloud/bioscout/internal/domain"
)

func newMockedClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	c, err := New(Config{
		Name:       "observations",
		BaseURL:    "http://backend.test/api/",
		Sentinel:   domain.ErrObservationsUnavailable,
		HTTPClient: &http.Client{Transport: mt},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, mt
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no name", Config{BaseURL: "http://x", Sentinel: domain.ErrQueryUnavailable}},
		{"no sentinel", Config{Name: "rag", BaseURL: "http://x"}},
		{"relative url", Config{Name: "rag", BaseURL: "/api", Sentinel: domain.ErrQueryUnavailable}},
		{"garbage url", Config{Name: "rag", BaseURL: "::", Sentinel: domain.ErrQueryUnavailable}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetJSON(t *testing.T) {
	c, mt := newMockedClient(t)
	mt.RegisterResponder("GET", "http://backend.test/api/observations",
		func(req *http.Request) (*http.Response, error) {
			if req.URL.Query().Get("species") != "chir pine" {
				t.Errorf("query = %q", req.URL.RawQuery)
			}
			if req.Header.Get("Accept") != "application/json" || req.Header.Get("User-Agent") != "bioscout" {
				t.Errorf("headers = %v", req.Header)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
		})

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.GetJSON(context.Background(), "/observations", map[string][]string{"species": {"chir pine"}}, &out)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !out.OK {
		t.Error("response not decoded")
	}
	if n := mt.GetTotalCallCount(); n != 1 {
		t.Errorf("calls = %d", n)
	}
}

func TestPostJSON_SendsBody(t *testing.T) {
	c, mt := newMockedClient(t)
	mt.RegisterResponder("POST", "http://backend.test/api/queries",
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Content-Type") != "application/json" {
				t.Errorf("content type = %q", req.Header.Get("Content-Type"))
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]string{"echo": "ok"})
		})

	var out map[string]string
	if err := c.PostJSON(context.Background(), "queries", map[string]string{"query": "hi"}, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out["echo"] != "ok" {
		t.Errorf("out = %v", out)
	}
}

func TestDo_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json error field", http.StatusInternalServerError, `{"error":"database locked"}`, "database locked"},
		{"json message field", http.StatusBadRequest, `{"message":"bad species"}`, "bad species"},
		{"plain body", http.StatusBadGateway, "upstream down", "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mt := newMockedClient(t)
			mt.RegisterResponder("GET", "http://backend.test/api/observations",
				httpmock.NewStringResponder(tt.status, tt.body))

			err := c.GetJSON(context.Background(), "observations", nil, nil)
			if !errors.Is(err, domain.ErrObservationsUnavailable) {
				t.Fatalf("expected sentinel, got %v", err)
			}
			var upErr *domain.UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected UpstreamError, got %T", err)
			}
			if upErr.StatusCode != tt.status || upErr.Message != tt.message {
				t.Errorf("got status=%d message=%q", upErr.StatusCode, upErr.Message)
			}
		})
	}
}

func TestDo_TransportError(t *testing.T) {
	c, mt := newMockedClient(t)
	mt.RegisterResponder("GET", "http://backend.test/api/health",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	err := c.GetJSON(context.Background(), "health", nil, nil)
	if !errors.Is(err, domain.ErrObservationsUnavailable) {
		t.Errorf("expected sentinel, got %v", err)
	}
}

func TestDo_DecodeError(t *testing.T) {
	c, mt := newMockedClient(t)
	mt.RegisterResponder("GET", "http://backend.test/api/observations",
		httpmock.NewStringResponder(http.StatusOK, `<html>`))

	var out map[string]any
	err := c.GetJSON(context.Background(), "observations", nil, &out)
	if !errors.Is(err, domain.ErrObservationsUnavailable) {
		t.Errorf("expected sentinel, got %v", err)
	}
}

func TestDo_Timeout(t *testing.T) {
	mt := httpmock.NewMockTransport()
	c, err := New(Config{
		Name:       "rag",
		BaseURL:    "http://rag.test",
		Timeout:    20 * time.Millisecond,
		Sentinel:   domain.ErrQueryUnavailable,
		HTTPClient: &http.Client{Transport: mt},
	})
	if err != nil {
		t.Fatal(err)
	}
	mt.RegisterResponder("POST", "http://rag.test/queries",
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	err = c.PostJSON(context.Background(), "queries", map[string]string{"query": "q"}, nil)
	if !errors.Is(err, domain.ErrQueryUnavailable) {
		t.Errorf("expected sentinel, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
