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

const defaultOllamaBaseURL = "http://127.0.0.1:11434/api/generate"

// OllamaClient is a minimal REST client for a local Ollama server; it
// serves as the always-available secondary provider.
type OllamaClient struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOllamaClient constructs a client for the given local model.
func NewOllamaClient(model, baseURL string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaClient{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

func (c *OllamaClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\n" + userPrompt
	}

	payload, err := json.Marshal(map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ghosterr.ErrStore, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ghosterr.ErrProviderUnavailable, err)
	}
	req.Header.Set("content-type", "application/json")

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
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ghosterr.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ghosterr.ErrParseFailure, err)
	}
	return parsed.Response, nil
}
