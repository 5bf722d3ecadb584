package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os-ghost/core/internal/provider"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Call(ctx context.Context, class provider.Class, systemPrompt, userPrompt string) (string, error) {
	return f.response, f.err
}

func TestCompanion_CanHandleRequiresTaskDescription(t *testing.T) {
	c := NewCompanion(&fakeCompleter{}, provider.Medium)
	assert.False(t, c.CanHandle(Context{}))
	assert.True(t, c.CanHandle(Context{TaskDescription: "open mail"}))
}

func TestCompanion_ProcessParsesStructuredReply(t *testing.T) {
	c := NewCompanion(&fakeCompleter{response: `{"message":"done","strategy":"focus","solved":false}`}, provider.Medium)

	out, err := c.Process(context.Background(), Context{TaskDescription: "open mail"})
	require.NoError(t, err)
	assert.Equal(t, "done", out.Result)
	assert.Equal(t, "focus", out.Data["strategy"])
	assert.Equal(t, NextContinue, out.Next)
}

func TestCompanion_ProcessToleratesCodeFence(t *testing.T) {
	c := NewCompanion(&fakeCompleter{response: "```json\n{\"message\":\"ok\",\"strategy\":\"verify\",\"solved\":true}\n```"}, provider.Medium)

	out, err := c.Process(context.Background(), Context{TaskDescription: "check box"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Result)
	assert.Equal(t, NextPuzzleSolved, out.Next)
}

func TestCompanion_ProcessFailSafesOnUnparsableReply(t *testing.T) {
	c := NewCompanion(&fakeCompleter{response: "not json at all"}, provider.Medium)

	out, err := c.Process(context.Background(), Context{TaskDescription: "anything"})
	require.NoError(t, err)
	assert.Equal(t, NextStop, out.Next)
	assert.Equal(t, false, out.Data["approved"])
}

func TestCompanion_ProcessPropagatesProviderError(t *testing.T) {
	c := NewCompanion(&fakeCompleter{err: assert.AnError}, provider.Medium)

	_, err := c.Process(context.Background(), Context{TaskDescription: "anything"})
	assert.Error(t, err)
}
