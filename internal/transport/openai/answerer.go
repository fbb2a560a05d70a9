// Package openai answers biodiversity questions with an OpenAI-compatible chat model.
// It is the fallback used when the RAG collaborator is unavailable.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/answer"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
	"github.com/kailas-cloud/bioscout/internal/metrics"
)

const (
	serviceName = "openai"

	// DefaultModel is used when no model is configured.
	DefaultModel = openai.GPT3Dot5Turbo
	// DefaultMaxTokens caps the answer length.
	DefaultMaxTokens = 500
	// DefaultContextLimit caps how many observations are quoted in the prompt.
	DefaultContextLimit = 10

	systemPrompt = "You are a biodiversity expert specialized in the flora and fauna of Islamabad, Pakistan. " +
		"Answer questions based on the following context. " +
		"If you don't know the answer based on the context, say so politely.\n\nContext:\n"
	noContext = "No specific information found in our knowledge base."
)

// ContextProvider returns observations relevant to a question.
type ContextProvider interface {
	Observations(ctx context.Context, question string) ([]observation.Record, error)
}

// Config holds the chat answerer settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	ContextLimit int
	Context      ContextProvider
	Logger       *zap.Logger
}

// Answerer answers questions with a chat completion grounded on local observations.
type Answerer struct {
	client       *openai.Client
	model        string
	maxTokens    int
	contextLimit int
	context      ContextProvider
	logger       *zap.Logger
}

// NewAnswerer creates a chat answerer. Context may be nil.
func NewAnswerer(cfg *Config) *Answerer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	a := &Answerer{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		contextLimit: cfg.ContextLimit,
		context:      cfg.Context,
		logger:       cfg.Logger,
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.maxTokens <= 0 {
		a.maxTokens = DefaultMaxTokens
	}
	if a.contextLimit <= 0 {
		a.contextLimit = DefaultContextLimit
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

// Ask implements query.Answerer.
func (a *Answerer) Ask(ctx context.Context, question string) (answer.Answer, error) {
	records := a.observations(ctx, question)

	req := openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt + buildContext(records)},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	metrics.CollaboratorRequestDuration.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CollaboratorRequestsTotal.WithLabelValues(serviceName, "error").Inc()
		return answer.Answer{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.CollaboratorRequestsTotal.WithLabelValues(serviceName, "empty").Inc()
		return answer.Answer{}, fmt.Errorf("empty chat completion: %w", domain.ErrQueryUnavailable)
	}
	metrics.CollaboratorRequestsTotal.WithLabelValues(serviceName, "success").Inc()

	a.logger.Debug("Chat answer completed",
		zap.String("model", a.model),
		zap.Int("context_observations", len(records)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return answer.Answer{
		Text:         resp.Choices[0].Message.Content,
		Observations: records,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Answerer) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// observations fetches prompt context. Failures degrade to an answer without
// context.
func (a *Answerer) observations(ctx context.Context, question string) []observation.Record {
	if a.context == nil {
		return nil
	}
	records, err := a.context.Observations(ctx, question)
	if err != nil {
		a.logger.Warn("Observation context unavailable", zap.Error(err))
		return nil
	}
	if len(records) > a.contextLimit {
		records = records[:a.contextLimit]
	}
	return records
}

func buildContext(records []observation.Record) string {
	if len(records) == 0 {
		return noContext
	}
	var b strings.Builder
	b.WriteString("Recent observations:\n")
	for _, r := range records {
		fmt.Fprintf(&b, "- %s", r.SpeciesName)
		if r.Location != "" {
			fmt.Fprintf(&b, " at %s", r.Location)
		}
		if r.DateObserved != "" {
			fmt.Fprintf(&b, " on %s", r.DateObserved)
		}
		if r.Notes != "" {
			fmt.Fprintf(&b, ": %s", r.Notes)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrQueryUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrQueryUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %w", reqErr.HTTPStatusCode, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %v: %w", err, wrap)
}

// extractDetail reads the "detail" field some OpenAI-compatible providers return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
