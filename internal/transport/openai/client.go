// Package openai is the gateway to the inference endpoint. It owns
// single-attempt request semantics: no retries, errors surface to the
// caller wrapped with domain.ErrInferenceProvider.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/domain"
	"github.com/giftwise/giftwise/internal/metrics"
)

// Config holds the inference endpoint settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    *zap.Logger
}

// Client sends chat completions to an OpenAI-compatible endpoint.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewClient creates an inference gateway. A missing credential is a
// configuration error, surfaced immediately.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}, nil
}

// Complete sends a completion request and returns the generated text.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	req := c.buildRequest(messages, opts)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(c.model, opts.Purpose, "error").Inc()
		return "", parseAPIError(err)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(c.model, opts.Purpose, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.InferenceTokensTotal.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.InferenceTokensTotal.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrInferenceProvider)
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream sends a completion request and returns an incremental token
// source. The caller may abandon it at any point; Close releases the
// underlying connection.
func (c *Client) Stream(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (domain.TokenStream, error) {
	req := c.buildRequest(messages, opts)
	req.Stream = true

	inner, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(c.model, opts.Purpose, "error").Inc()
		return nil, parseAPIError(err)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(c.model, opts.Purpose, "success").Inc()
	return &Stream{inner: inner}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (c *Client) buildRequest(messages []domain.ChatMessage, opts domain.ChatOptions) openai.ChatCompletionRequest {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	apiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		apiMessages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    apiMessages,
		Temperature: opts.Temperature,
		MaxTokens:   maxTokens,
	}
}

// Stream implements domain.TokenStream over a chat completion stream.
type Stream struct {
	inner *openai.ChatCompletionStream
}

// Recv returns the next text fragment, or io.EOF when the stream ends.
func (s *Stream) Recv() (string, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

// Close releases the underlying connection.
func (s *Stream) Close() error {
	return s.inner.Close()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrInferenceProvider so the transport
// maps them to 502.
func parseAPIError(err error) error {
	wrap := domain.ErrInferenceProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("inference API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("inference API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("inference API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("inference request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
