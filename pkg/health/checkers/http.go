// Package checkers holds health checks for the service's upstream dependencies.
package checkers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Base URLs of the hosted model APIs, probed by readiness checks.
const (
	GeminiEndpoint    = "https://generativelanguage.googleapis.com/"
	AnthropicEndpoint = "https://api.anthropic.com/"
	OpenAIEndpoint    = "https://api.openai.com/"
)

// ProviderEndpoint returns the API base URL for an LLM provider name, or ""
// when the provider is unknown.
func ProviderEndpoint(provider string) string {
	switch provider {
	case "gemini":
		return GeminiEndpoint
	case "claude", "anthropic":
		return AnthropicEndpoint
	case "openai":
		return OpenAIEndpoint
	default:
		return ""
	}
}

// HTTPChecker reports an endpoint healthy when it answers with anything below 500.
// Auth failures (401/403/404) still prove the upstream is reachable.
type HTTPChecker struct {
	url    string
	client *http.Client
	name   string
}

// NewHTTPChecker creates a checker for url. name defaults to the URL.
// A nil client gets a 10 second timeout.
func NewHTTPChecker(url, name string, client *http.Client) *HTTPChecker {
	if name == "" {
		name = url
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPChecker{url: url, name: name, client: client}
}

func (h *HTTPChecker) Name() string {
	return h.name
}

// Check issues a GET against the endpoint.
func (h *HTTPChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 500 {
		return fmt.Errorf("unhealthy status code: %d", resp.StatusCode)
	}
	return nil
}
