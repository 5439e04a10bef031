// Package graph is the REST client for the remote workspace platform (mail,
// calendar, chat, file storage). It performs the actual side-effecting
// operations after the confirmation workflow has approved them; nothing in
// this package is confirmation-aware.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ariaerrors "aria/internal/errors"
	"aria/internal/httpclient"
	"aria/internal/observability"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultBaseURL       = "https://graph.example.com/v1.0"
	defaultTimeout       = 30 * time.Second
	maxResponseBodyBytes = 4 << 20 // 4 MiB
	contactCacheSize     = 512
)

// Config configures the workspace client.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to the workspace REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *observability.Logger

	contactCache *lru.Cache[string, Contact]
}

// APIError is a non-2xx response from the workspace API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workspace api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// NewClient constructs a workspace client.
func NewClient(config Config, tokens TokenSource, logger *observability.Logger) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("workspace client requires a token source")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger = observability.OrNop(logger).With("component", "graph")

	cache, err := lru.New[string, Contact](contactCacheSize)
	if err != nil {
		return nil, fmt.Errorf("contact cache init: %w", err)
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   httpclient.NewWithCircuitBreaker(timeout, "graph-api", logger),
		tokens:       tokens,
		logger:       logger,
		contactCache: cache,
	}, nil
}

// do issues one authenticated request and decodes a JSON response into out
// (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "workspace api call",
		"method", method, "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	data, err := httpclient.ReadAllWithLimit(resp.Body, maxResponseBodyBytes)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return ariaerrors.ClassifyHTTPStatus(resp.StatusCode, apiErr)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
