package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	ariaerrors "aria/internal/errors"
	"aria/internal/httpclient"
	"aria/internal/observability"
)

const (
	defaultBaseURL      = "https://api.openai.com/v1"
	defaultTimeout      = 120 * time.Second
	maxResponseBytes    = 8 << 20 // 8 MiB
	defaultMaxRetries   = 2
	initialRetryBackoff = 500 * time.Millisecond
)

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
	maxRetries int
}

// NewOpenAIClient constructs a chat client from config.
func NewOpenAIClient(config Config, logger *observability.Logger) *OpenAIClient {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := defaultTimeout
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}
	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	logger = observability.OrNop(logger).With("component", "llm")

	return &OpenAIClient{
		model:      config.Model,
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		httpClient: httpclient.New(timeout),
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// Chat sends one chat-completions request, retrying transient failures.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("chat request cannot be nil")
	}
	if req.Model == "" {
		req.Model = c.model
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	var lastErr error
	backoff := initialRetryBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WarnContext(ctx, "retrying chat request", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		resp, err := c.doChat(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !ariaerrors.IsTransient(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("chat request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *OpenAIClient) doChat(ctx context.Context, payload []byte) (*ChatResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := httpclient.ReadAllWithLimit(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}

	c.logger.DebugContext(ctx, "chat completion",
		"model", c.model, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("chat api status %d: %s", resp.StatusCode, truncateBody(body))
		return nil, ariaerrors.ClassifyHTTPStatus(resp.StatusCode, apiErr)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat response contained no choices")
	}
	return &chatResp, nil
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
