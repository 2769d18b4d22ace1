package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/infrastructure/resilience"
)

const generateOperation = "ollama_generate"

// Client generates text through the Ollama /api/generate endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
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

func New(baseURL, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends one system and user prompt pair. Errors are *domain.ProviderError.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"system": systemPrompt,
		"prompt": userPrompt,
		"stream": false,
	}
	text, err := resilience.Call(ctx, c.executor, generateOperation, func(ctx context.Context) (string, error) {
		var response struct {
			Response string `json:"response"`
		}
		if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
			return "", err
		}
		return strings.TrimSpace(response.Response), nil
	}, classifyOllamaError)
	if err != nil {
		return "", toProviderError(err)
	}
	return text, nil
}
