package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/os-ghost/core/internal/ghosterr"
)

const defaultAnthropicBaseURL = "https://api.anthropic.com/v1/messages"

// AnthropicClient is a minimal REST client for the Anthropic Messages
// API. The pack carries no first-party Anthropic SDK, so this talks to
// the API directly over net/http (see DESIGN.md for the stdlib
// justification).
type AnthropicClient struct {
	apiKey      string
	model       string
	baseURL     string
	temperature string
	httpClient  *http.Client
}

// NewAnthropicClient constructs a client for the given model and API key.
func NewAnthropicClient(apiKey, model, baseURL, temperature string, timeout time.Duration) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

func (c *AnthropicClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": 4096,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
	}
	if systemPrompt != "" {
		reqBody["system"] = systemPrompt
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ghosterr.ErrStore, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ghosterr.ErrProviderUnavailable, err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ghosterr.ErrProviderTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ghosterr.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ghosterr.ErrProviderUnavailable, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w", ghosterr.ErrProviderRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ghosterr.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ghosterr.ErrParseFailure, err)
	}
	if len(parsed.Content) == 0 {
		return "", nil
	}
	return parsed.Content[0].Text, nil
}
