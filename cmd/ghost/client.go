package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiClient is a thin wrapper over the status API (internal/statusapi)
// for the CLI subcommands that talk to an already-running "ghost run"
// process rather than starting one themselves.
type apiClient struct {
	base string
	hc   *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{base: base, hc: &http.Client{Timeout: 30 * time.Second}}
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status API returned %d: %s", e.status, e.body)
}

func (c *apiClient) do(method, path string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call status api at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &apiError{status: resp.StatusCode, body: string(raw)}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (c *apiClient) Status() (map[string]any, error) { return c.do(http.MethodGet, "/api/v1/status", nil) }

func (c *apiClient) Execute(task string, proximity float64) (map[string]any, error) {
	return c.do(http.MethodPost, "/api/v1/execute", map[string]any{"task": task, "proximity": proximity})
}

func (c *apiClient) Agents() (map[string]any, error) {
	return c.do(http.MethodGet, "/api/v1/agents", nil)
}

func (c *apiClient) Memory(tree string) (map[string]any, error) {
	path := "/api/v1/memory"
	if tree != "" {
		path += "?tree=" + tree
	}
	return c.do(http.MethodGet, path, nil)
}

func (c *apiClient) PendingActions() (map[string]any, error) {
	return c.do(http.MethodGet, "/api/v1/pending-actions", nil)
}

func (c *apiClient) Approve(id string) (map[string]any, error) {
	return c.do(http.MethodPost, "/api/v1/actions/"+id+"/approve", nil)
}

func (c *apiClient) Deny(id string) (map[string]any, error) {
	return c.do(http.MethodPost, "/api/v1/actions/"+id+"/deny", nil)
}

func (c *apiClient) ListWorkflows() (map[string]any, error) {
	return c.do(http.MethodGet, "/api/v1/workflows", nil)
}

func (c *apiClient) ExecuteWorkflow(id string) (map[string]any, error) {
	return c.do(http.MethodPost, "/api/v1/workflows/"+id+"/execute", nil)
}

func (c *apiClient) RecordStart(id string) (map[string]any, error) {
	return c.do(http.MethodPost, "/api/v1/record/start", map[string]any{"id": id})
}

func (c *apiClient) RecordStop() (map[string]any, error) {
	return c.do(http.MethodPost, "/api/v1/record/stop", nil)
}

// printJSON pretty-prints v (typically a decoded response map) to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
