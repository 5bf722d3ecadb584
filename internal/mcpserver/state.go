package mcpserver

import (
	"sync"
	"time"
)

// ConnectionStatus reports the handshake/liveness state of the single
// active (or most recently active) extension connection.
type ConnectionStatus struct {
	Connected        bool      `json:"connected"`
	ProtocolVersion  string    `json:"protocol_version,omitempty"`
	ExtensionVersion string    `json:"extension_version,omitempty"`
	ExtensionID      string    `json:"extension_id,omitempty"`
	Capabilities     []string  `json:"capabilities,omitempty"`
	LastHeartbeat    time.Time `json:"last_heartbeat,omitempty"`
}

// HistoryEntry is one entry in the recent-history list the extension
// reports via browsing_context.
type HistoryEntry struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// BrowserState is the in-memory snapshot of what the connected browser
// extension has reported: current page, recent history, top sites, and
// the last screenshot (if consent allows it).
type BrowserState struct {
	mu sync.RWMutex

	status ConnectionStatus

	currentURL   string
	currentTitle string
	bodyText     string
	updatedAt    time.Time

	history   []HistoryEntry
	topSites  []HistoryEntry

	lastScreenshot   string // data URL
	lastScreenshotAt time.Time
}

// NewBrowserState builds an empty BrowserState.
func NewBrowserState() *BrowserState {
	return &BrowserState{}
}

func (s *BrowserState) setConnected(status ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *BrowserState) setDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Connected = false
}

func (s *BrowserState) touchHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastHeartbeat = time.Now()
}

func (s *BrowserState) Status() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *BrowserState) setPage(url, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentURL, s.currentTitle = url, title
	s.updatedAt = time.Now()
}

func (s *BrowserState) setPageContent(url, title, bodyText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentURL, s.currentTitle, s.bodyText = url, title, bodyText
	s.updatedAt = time.Now()
}

func (s *BrowserState) setBrowsingContext(history, topSites []HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history, s.topSites = history, topSites
}

func (s *BrowserState) setScreenshot(dataURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScreenshot, s.lastScreenshotAt = dataURL, time.Now()
}

// CurrentPage returns a JSON-ready snapshot for browser://current-page.
func (s *BrowserState) CurrentPage() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"url":        s.currentURL,
		"title":      s.currentTitle,
		"body_text":  s.bodyText,
		"updated_at": s.updatedAt,
	}
}

// History returns a JSON-ready snapshot for browser://history.
func (s *BrowserState) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// TopSites returns a JSON-ready snapshot for browser://top-sites.
func (s *BrowserState) TopSites() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.topSites))
	copy(out, s.topSites)
	return out
}
