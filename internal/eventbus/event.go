// Package eventbus implements the Event Bus & Intent Engine (C12): a
// shared ordered log of events with optional dedup suppression, and a
// scorer that turns recent events into ranked IntentCandidates, some of
// which may be auto-promoted into Pending Actions.
package eventbus

import (
	"sync"
	"time"
)

// Event is one entry in the ordered log.
type Event struct {
	ID        uint64
	Type      string
	Source    string
	Data      map[string]any
	Priority  int
	DedupKey  string
	Timestamp time.Time
}

// ringSize bounds the in-memory log, mirroring the ledger's bounded
// ring (spec.md §5's "bounded ring" shape applied to the event bus).
const ringSize = 1000

// Bus is an append-only, bounded, deduplicated event log.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	entries  []Event
	lastSeen map[string]time.Time

	dedupWindow time.Duration
}

// New constructs a Bus that suppresses a new event when another event
// with the same DedupKey arrived within dedupWindow.
func New(dedupWindow time.Duration) *Bus {
	if dedupWindow <= 0 {
		dedupWindow = 10 * time.Second
	}
	return &Bus{
		lastSeen:    make(map[string]time.Time),
		dedupWindow: dedupWindow,
	}
}

// Publish appends an event, assigning it the next id, unless its
// DedupKey was seen within the dedup window, in which case it's
// suppressed and Publish returns (0, false).
func (b *Bus) Publish(typ, source string, data map[string]any, priority int, dedupKey string) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if dedupKey != "" {
		if last, ok := b.lastSeen[dedupKey]; ok && now.Sub(last) < b.dedupWindow {
			return 0, false
		}
		b.lastSeen[dedupKey] = now
	}

	b.nextID++
	id := b.nextID
	b.entries = append(b.entries, Event{
		ID:        id,
		Type:      typ,
		Source:    source,
		Data:      data,
		Priority:  priority,
		DedupKey:  dedupKey,
		Timestamp: now,
	})
	if len(b.entries) > ringSize {
		b.entries = b.entries[len(b.entries)-ringSize:]
	}
	return id, true
}

// ListRecent returns up to limit events, most recent first, skipping
// the first offset.
func (b *Bus) ListRecent(limit, offset int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.entries)
	out := make([]Event, 0, limit)
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, b.entries[i])
	}
	return out
}

// Len reports how many events are currently retained.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
