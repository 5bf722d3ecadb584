package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Approved bool    `json:"approved"`
	Safety   float64 `json:"safety"`
}

func TestStripCodeFence_JSONFence(t *testing.T) {
	raw := "```json\n{\"approved\": true}\n```"
	assert.Equal(t, `{"approved": true}`, StripCodeFence(raw))
}

func TestStripCodeFence_BareFence(t *testing.T) {
	raw := "```\n{\"approved\": true}\n```"
	assert.Equal(t, `{"approved": true}`, StripCodeFence(raw))
}

func TestStripCodeFence_NoFence(t *testing.T) {
	raw := `{"approved": true}`
	assert.Equal(t, raw, StripCodeFence(raw))
}

func TestParseStructured_Success(t *testing.T) {
	var v verdict
	err := ParseStructured("```json\n{\"approved\": true, \"safety\": 1}\n```", &v)
	require.NoError(t, err)
	assert.True(t, v.Approved)
	assert.Equal(t, 1.0, v.Safety)
}

func TestParseStructured_FailureYieldsFailSafe(t *testing.T) {
	var v verdict
	err := ParseStructured("not json at all", &v)
	require.Error(t, err)

	out := FailSafe("guardrail", err.Error())
	assert.Equal(t, false, out.Data["approved"])
}
