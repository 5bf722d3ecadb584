// Package mcpserver implements the MCP Browser Server + Bridge (C9): a
// loopback TCP listener speaking length-prefixed JSON frames to a
// companion browser extension, plus the tool/resource surface the
// Orchestrator invokes through internal/orchestrator.MCPHandle.
package mcpserver

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/os-ghost/core/internal/ghosterr"
)

// maxFrameBytes bounds a single frame body, per spec.md §4.9 ("0 < L ≤ 1 MiB").
const maxFrameBytes = 1 << 20

// frameReadTimeout bounds how long a read on the frame body may block
// before the connection is considered idle and closed.
const frameReadTimeout = 30 * time.Second

// Frame is the decoded JSON body of one length-prefixed message. Inbound
// frames are inspected by Type; outbound frames are built fresh by the
// caller with whatever shape the message kind requires.
type Frame map[string]any

// Type returns the frame's "type" field, or "" if absent/non-string.
func (f Frame) Type() string {
	v, _ := f["type"].(string)
	return v
}

// readFrame reads one length-prefixed frame from r: a 4-byte
// little-endian length L followed by L bytes of JSON. A zero or
// oversized length is reported as ErrInvalidParams so the caller can
// close the connection without attempting resynchronization, matching
// spec.md §4.9's "malformed frames close the connection".
func readFrame(r *bufio.Reader, deadliner interface{ SetReadDeadline(time.Time) error }) (Frame, error) {
	if deadliner != nil {
		_ = deadliner.SetReadDeadline(time.Now().Add(frameReadTimeout))
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length == 0 || length > maxFrameBytes {
		return nil, fmt.Errorf("%w: frame length %d out of bounds", ghosterr.ErrInvalidParams, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	var frame Frame
	if err := json.Unmarshal(body, &frame); err != nil {
		return nil, fmt.Errorf("%w: decode frame: %v", ghosterr.ErrInvalidParams, err)
	}
	return frame, nil
}

// writeFrame serializes v and writes it length-prefixed to w. A
// serialization failure is reported to the caller, which (per spec.md
// §4.9's drain semantics) logs and drops the frame rather than
// propagating the error further.
func writeFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: marshal frame: %v", ghosterr.ErrIO, err)
	}
	if len(body) > maxFrameBytes {
		return fmt.Errorf("%w: outbound frame too large (%d bytes)", ghosterr.ErrIO, len(body))
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("%w: write frame length: %v", ghosterr.ErrIO, err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("%w: write frame body: %v", ghosterr.ErrIO, err)
	}
	return nil
}
