package statusapi

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/orchestrator"
	"github.com/os-ghost/core/internal/policy"
	"github.com/os-ghost/core/internal/queue"
	"github.com/os-ghost/core/internal/store"
	"github.com/os-ghost/core/internal/workflow"
)

type echoStep struct{}

func (echoStep) Run(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
	return agent.Output{
		AgentName: "echo",
		Result:    "you said: " + agentCtx.TaskDescription,
		Next:      agent.NextContinue,
		Data:      map[string]any{"strategy": "focus"},
	}, nil
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	mem, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	ledger := queue.NewLedger(ledgerPath, 10, time.Hour)
	t.Cleanup(func() { _ = ledger.Close() })
	q := queue.New(ledger)

	pol, err := policy.Open(filepath.Join(t.TempDir(), "policy.json"))
	require.NoError(t, err)

	orch := orchestrator.New(orchestrator.Config{
		Agents:         nil,
		LegacyWorkflow: workflow.Sequential{Steps: []workflow.Step{echoStep{}}},
		Memory:         mem,
	})

	srv := New(Deps{
		Orchestrator: orch,
		Queue:        q,
		Memory:       mem,
		Policy:       pol,
	}, "*")

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}
