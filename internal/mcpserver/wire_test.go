package mcpserver

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadFrame_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, map[string]any{"type": "heartbeat"}))

	frame, err := readFrame(bufio.NewReader(&buf), nil)
	require.NoError(t, err)
	assert.Equal(t, "heartbeat", frame.Type())
}

func TestReadFrame_ZeroLengthIsRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0})

	_, err := readFrame(bufio.NewReader(&buf), nil)
	assert.Error(t, err)
}

func TestReadFrame_OversizedLengthIsRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0x7F}) // far beyond maxFrameBytes

	_, err := readFrame(bufio.NewReader(&buf), nil)
	assert.Error(t, err)
}

func TestWriteFrame_RejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	big := make([]byte, maxFrameBytes+1)
	err := writeFrame(&buf, map[string]any{"data": string(big)})
	assert.Error(t, err)
}
