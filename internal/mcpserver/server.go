package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/os-ghost/core/internal/config"
	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/policy"
)

// Server is the C9 MCP browser bridge: a loopback TCP listener speaking
// length-prefixed JSON frames to a companion browser extension.
type Server struct {
	cfg      config.MCPServerConfig
	pol      *policy.Policy
	state    *BrowserState
	registry *Registry

	effects chan map[string]any

	listener net.Listener
	connCount atomic.Int32

	mu        sync.Mutex
	perConnEffects map[net.Conn]chan map[string]any
}

// New builds a Server. effects is the shared MCP effect channel fed by
// tool invocations (see NewInvoker); the server drains it between
// inbound messages on whichever connection is currently active.
func New(cfg config.MCPServerConfig, pol *policy.Policy, state *BrowserState, registry *Registry, effects chan map[string]any) *Server {
	return &Server{
		cfg:            cfg,
		pol:            pol,
		state:          state,
		registry:       registry,
		effects:        effects,
		perConnEffects: make(map[net.Conn]chan map[string]any),
	}
}

// ListenAndServe binds the loopback listener and accepts connections
// until ctx is cancelled. At most cfg.MaxConnections are served
// concurrently; excess connections are closed immediately, per spec.md
// §4.9.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %v", ghosterr.ErrIO, addr, err)
	}
	s.listener = ln
	logging.MCP("mcp bridge listening on %s", addr)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	maxConns := int32(s.cfg.MaxConnections)
	if maxConns <= 0 {
		maxConns = 10
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("%w: accept: %v", ghosterr.ErrIO, err)
			}
		}

		if s.connCount.Load() >= maxConns {
			logging.MCPWarn("connection limit reached, rejecting %s", conn.RemoteAddr())
			_ = conn.Close()
			continue
		}

		s.connCount.Add(1)
		go func() {
			defer s.connCount.Add(-1)
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	defer s.state.setDisconnected()

	local := make(chan map[string]any, 32)
	s.mu.Lock()
	s.perConnEffects[conn] = local
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.perConnEffects, conn)
		s.mu.Unlock()
	}()

	reader := bufio.NewReader(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := readFrame(reader, conn)
		if err != nil {
			logging.MCPWarn("connection %s: %v", conn.RemoteAddr(), err)
			return
		}

		if err := s.dispatch(conn, frame, local); err != nil {
			logging.MCPWarn("connection %s: dispatch %q failed: %v", conn.RemoteAddr(), frame.Type(), err)
			return
		}

		s.drainEffects(conn, local)
		s.sendPermissions(conn)
	}
}

func (s *Server) dispatch(conn net.Conn, frame Frame, local chan map[string]any) error {
	switch frame.Type() {
	case "hello":
		return s.handleHello(conn, frame)
	case "heartbeat":
		s.state.touchHeartbeat()
		return writeFrame(conn, map[string]any{"action": "acknowledged"})
	case "page_load", "tab_changed":
		return s.handlePageEvent(conn, frame)
	case "page_content":
		return s.handlePageContent(conn, frame)
	case "browsing_context":
		return s.handleBrowsingContext(conn, frame)
	case "tab_screenshot":
		return s.handleScreenshot(conn, frame)
	default:
		logging.MCPDebug("connection %s: unrecognized frame type %q", conn.RemoteAddr(), frame.Type())
		return writeFrame(conn, map[string]any{"action": "acknowledged", "success": false})
	}
}

func (s *Server) handleHello(conn net.Conn, frame Frame) error {
	caps, _ := frame["capabilities"].([]any)
	capStrs := make([]string, 0, len(caps))
	for _, c := range caps {
		if str, ok := c.(string); ok {
			capStrs = append(capStrs, str)
		}
	}
	status := ConnectionStatus{
		Connected:        true,
		ProtocolVersion:  stringField(frame, "protocol_version"),
		ExtensionVersion: stringField(frame, "extension_version"),
		ExtensionID:      stringField(frame, "extension_id"),
		Capabilities:     capStrs,
		LastHeartbeat:    time.Now(),
	}
	s.state.setConnected(status)
	logging.MCP("hello from extension %s v%s (protocol %s)", status.ExtensionID, status.ExtensionVersion, status.ProtocolVersion)

	if err := writeFrame(conn, map[string]any{"action": "acknowledged", "success": true}); err != nil {
		return err
	}
	return s.sendPermissions(conn)
}

func (s *Server) handlePageEvent(conn net.Conn, frame Frame) error {
	settings := s.pol.Load()
	if !settings.ConsentBrowserContent {
		return writeFrame(conn, map[string]any{"action": "acknowledged", "success": false})
	}
	s.state.setPage(stringField(frame, "url"), stringField(frame, "title"))
	return writeFrame(conn, map[string]any{"action": "acknowledged", "success": true})
}

func (s *Server) handlePageContent(conn net.Conn, frame Frame) error {
	settings := s.pol.Load()
	if !settings.ConsentBrowserContent {
		return writeFrame(conn, map[string]any{"action": "acknowledged", "success": false})
	}
	s.state.setPageContent(stringField(frame, "url"), stringField(frame, "title"), stringField(frame, "body_text"))
	return writeFrame(conn, map[string]any{"action": "acknowledged", "success": true})
}

func (s *Server) handleBrowsingContext(conn net.Conn, frame Frame) error {
	settings := s.pol.Load()
	if !settings.ConsentBrowserContent {
		return writeFrame(conn, map[string]any{"action": "acknowledged", "success": false})
	}
	history := decodeHistory(frame["recent_history"])
	topSites := decodeHistory(frame["top_sites"])
	s.state.setBrowsingContext(history, topSites)
	return writeFrame(conn, map[string]any{"action": "acknowledged", "success": true})
}

func (s *Server) handleScreenshot(conn net.Conn, frame Frame) error {
	settings := s.pol.Load()
	if !settings.ConsentBrowserContent || !settings.ConsentTabCapture {
		return writeFrame(conn, map[string]any{"action": "acknowledged", "success": false})
	}
	s.state.setScreenshot(stringField(frame, "data_url"))
	return writeFrame(conn, map[string]any{"action": "acknowledged", "success": true})
}

func (s *Server) sendPermissions(conn net.Conn) error {
	settings := s.pol.Load()
	return writeFrame(conn, map[string]any{
		"action": "permissions",
		"data": map[string]any{
			"allow_browser_content": settings.ConsentBrowserContent,
			"allow_tab_capture":     settings.ConsentTabCapture,
		},
	})
}

// drainEffects flushes both the per-connection legacy effect queue and
// the shared MCP effect channel onto conn, non-blocking; a frame that
// fails to serialize is dropped with a log, per spec.md §4.9.
func (s *Server) drainEffects(conn net.Conn, local chan map[string]any) {
	for {
		select {
		case effect := <-local:
			if err := writeFrame(conn, effect); err != nil {
				logging.MCPWarn("dropping local effect frame: %v", err)
			}
		case effect := <-s.effects:
			if err := writeFrame(conn, effect); err != nil {
				logging.MCPWarn("dropping shared effect frame: %v", err)
			}
		default:
			return
		}
	}
}

func stringField(frame Frame, key string) string {
	v, _ := frame[key].(string)
	return v
}

func decodeHistory(raw any) []HistoryEntry {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]HistoryEntry, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url, _ := m["url"].(string)
		title, _ := m["title"].(string)
		out = append(out, HistoryEntry{URL: url, Title: title})
	}
	return out
}

func jsonString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: marshal tool result: %v", ghosterr.ErrIO, err)
	}
	return string(data), nil
}
