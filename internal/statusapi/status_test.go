package statusapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStatus_ReturnsModeAndHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "legacy", body["mode"])
	assert.Contains(t, body, "autonomy_level")
}

func TestHandleAgents_ExcludesProviderEntries(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/agents")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Agents []map[string]any `json:"agents"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	for _, a := range body.Agents {
		assert.NotContains(t, []string{"provider.primary", "provider.secondary"}, a["name"])
	}
}

func TestHandleMemory_TreeStatsWhenNoQuery(t *testing.T) {
	srv, ts := newTestServer(t)
	require.NoError(t, srv.deps.Memory.Set("session_memory", "k", []byte("v")))

	resp, err := http.Get(ts.URL + "/api/v1/memory")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Trees map[string]int64 `json:"trees"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Trees["session_memory"])
}

func TestHandleMemory_TreeContentsWithQuery(t *testing.T) {
	srv, ts := newTestServer(t)
	require.NoError(t, srv.deps.Memory.Set("session_memory", "k", []byte("v")))

	resp, err := http.Get(ts.URL + "/api/v1/memory?tree=session_memory")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Tree    string            `json:"tree"`
		Entries map[string]string `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "v", body.Entries["k"])
}
