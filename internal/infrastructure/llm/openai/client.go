package openai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/resilience"
)

const chatOperation = "openai_chat"

// Client calls an OpenAI compatible chat completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	executor    *resilience.Executor
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

func New(baseURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.7,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends one system and user prompt pair. Errors are *domain.ProviderError.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", domain.NewProviderError(0, "openai api key not configured", nil)
	}
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
	}
	text, err := resilience.Call(ctx, c.executor, chatOperation, func(ctx context.Context) (string, error) {
		var resp chatResponse
		if err := c.postJSON(ctx, "/v1/chat/completions", req, &resp); err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errEmptyChoices
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}, classifyOpenAIError)
	if err != nil {
		return "", toProviderError(err)
	}
	return text, nil
}
