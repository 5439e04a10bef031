// Package httpclient provides shared HTTP client construction for outbound
// API calls (LLM providers, the workspace graph API).
package httpclient

import (
	"net/http"
	"time"

	ariaerrors "aria/internal/errors"
	"aria/internal/observability"
)

// New builds an HTTP client with the given total request timeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// NewWithCircuitBreaker builds an HTTP client guarded by a circuit breaker.
func NewWithCircuitBreaker(timeout time.Duration, name string, logger *observability.Logger) *http.Client {
	client := New(timeout)
	client.Transport = WrapTransportWithCircuitBreaker(client.Transport, name, logger)
	return client
}

// WrapTransportWithCircuitBreaker wraps a transport with circuit breaker protection.
func WrapTransportWithCircuitBreaker(base http.RoundTripper, name string, logger *observability.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if name == "" {
		name = "http-client"
	}
	return &breakerRoundTripper{
		base:    base,
		breaker: ariaerrors.NewCircuitBreaker(name, ariaerrors.DefaultCircuitBreakerConfig(), logger),
	}
}

type breakerRoundTripper struct {
	base    http.RoundTripper
	breaker *ariaerrors.CircuitBreaker
}

func (t *breakerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.breaker.Allow(); err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.breaker.Mark(err)
		return nil, err
	}
	if ariaerrors.IsRetryableStatus(resp.StatusCode) {
		t.breaker.Mark(&ariaerrors.TransientError{StatusCode: resp.StatusCode})
	} else {
		t.breaker.Mark(nil)
	}
	return resp, nil
}
