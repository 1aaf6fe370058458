package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"webagent/internal/application/port/output"
	"webagent/internal/domain/entity"

	"github.com/sashabaranov/go-openai"
)

var _ output.LLMPort = (*OpenRouterAdapter)(nil)

// OpenRouterAdapter exposes the chat API as the single Complete call the
// core consumes. All transport failures map to entity.LLMServiceError so
// the orchestrator can route them through recovery.
type OpenRouterAdapter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
		Timeout: 120 * time.Second,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.logger.Debug("HTTP request", "method", req.Method, "url", req.URL.String())

	resp, err := t.base.RoundTrip(req)

	if resp != nil {
		t.logger.Debug("HTTP response", "status", resp.Status)
	}
	return resp, err
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	if cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	return &OpenRouterAdapter{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

func (a *OpenRouterAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if a.logger != nil {
		a.logger.Debug("Creating chat completion", "model", a.model, "promptChars", len(prompt))
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.0,
	})
	if err != nil {
		return "", &entity.LLMServiceError{Cause: err}
	}

	if len(resp.Choices) == 0 {
		return "", &entity.LLMServiceError{Cause: fmt.Errorf("no choices in response")}
	}

	return resp.Choices[0].Message.Content, nil
}
