package statusapi

import (
	"net/http"
	"time"

	"github.com/os-ghost/core/internal/eventbus"
	"github.com/os-ghost/core/internal/logging"
)

// wsPollInterval is how often handleWS checks the event bus for
// entries newer than the last one it streamed. eventbus.Bus has no
// blocking subscribe primitive (ListRecent is a point-in-time snapshot
// of the ring), so polling is the simplest correct adapter.
const wsPollInterval = 500 * time.Millisecond

// wsFrame is the {type, data} envelope §6 specifies for /ws frames.
type wsFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleWS implements GET /ws: streams every new eventbus.Event as a
// {type: "event", data: Event} frame until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.deps.Events == nil {
		http.Error(w, "event bus not configured", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.APIWarn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	var lastSeen uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fresh := newEventsSince(s.deps.Events, lastSeen)
			for _, ev := range fresh {
				if err := conn.WriteJSON(wsFrame{Type: "event", Data: ev}); err != nil {
					return
				}
				lastSeen = ev.ID
			}
		}
	}
}

// newEventsSince returns events with id > lastSeen, oldest first.
func newEventsSince(bus *eventbus.Bus, lastSeen uint64) []eventbus.Event {
	all := bus.ListRecent(bus.Len(), 0) // newest first
	var fresh []eventbus.Event
	for _, ev := range all {
		if ev.ID > lastSeen {
			fresh = append(fresh, ev)
		}
	}
	for i, j := 0, len(fresh)-1; i < j; i, j = i+1, j-1 {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	}
	return fresh
}
