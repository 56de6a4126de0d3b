package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/notewall/notewall/internal/notes"
	"github.com/notewall/notewall/pkg/logger"
	"github.com/notewall/notewall/pkg/metrics"
)

// sendBuffer bounds each session's outbound queue. A session that cannot
// drain this many events loses the overflow; delivery is best-effort and a
// reconnecting client re-fetches the full list anyway.
const sendBuffer = 32

// Publisher forwards announcements to sibling instances (see Bridge). May be
// nil on single-instance deployments.
type Publisher interface {
	Publish(ev Event, origin string)
}

// Session is one connected push-channel client. The id is opaque and is the
// origin token used for create-echo suppression.
type Session struct {
	id   string
	send chan []byte
}

func (s *Session) ID() string { return s.id }

// Events returns the outbound queue drained by the connection's write loop.
// The channel is closed on Disconnect.
func (s *Session) Events() <-chan []byte { return s.send }

// Hub tracks connected sessions and fans mutation events out to them.
// Announce* never block the caller: a session whose queue is full simply
// misses the event (logged and counted, never surfaced to the request).
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	pub      Publisher
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// SetPublisher attaches a cross-instance publisher. Call before serving.
func (h *Hub) SetPublisher(p Publisher) { h.pub = p }

// Connect registers a new session and queues its sessionReady event.
func (h *Hub) Connect() *Session {
	s := &Session{id: uuid.NewString(), send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.sessions[s.id] = s
	h.enqueue(s, mustMarshal(Event{Type: EventSessionReady, SessionID: s.id}), EventSessionReady)
	h.mu.Unlock()
	metrics.SessionsActive.Inc()
	logger.Debugf("session connected: %s", s.id)
	return s
}

// Disconnect releases the session id. No buffered replay is kept for a
// returning client; it must re-fetch the full list.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	close(s.send)
	metrics.SessionsActive.Dec()
	logger.Debugf("session disconnected: %s", id)
}

// AnnounceCreated pushes the canonical note to every session except the
// origin: the creator already holds the record from the synchronous response.
func (h *Hub) AnnounceCreated(n *notes.Note, originID string) {
	ev := Event{Type: EventNoteCreated, Note: n}
	h.deliver(ev, originID)
	if h.pub != nil {
		h.pub.Publish(ev, originID)
	}
}

// AnnounceUpdated pushes the canonical note to all sessions, the originator
// included; client reconcilers are idempotent against their own updates.
func (h *Hub) AnnounceUpdated(n *notes.Note) {
	ev := Event{Type: EventNoteUpdated, Note: n}
	h.deliver(ev, "")
	if h.pub != nil {
		h.pub.Publish(ev, "")
	}
}

// AnnounceDeleted pushes the deleted id to all sessions.
func (h *Hub) AnnounceDeleted(id string) {
	ev := Event{Type: EventNoteDeleted, ID: id}
	h.deliver(ev, "")
	if h.pub != nil {
		h.pub.Publish(ev, "")
	}
}

// deliver fans one event out to local sessions, skipping exclude when set.
// Used both for local announcements and events arriving over the bridge.
// The lock is held across the sends so a concurrent Disconnect cannot close
// a queue mid-delivery; enqueue never blocks, so this stays cheap.
func (h *Hub) deliver(ev Event, exclude string) {
	payload := mustMarshal(ev)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.sessions {
		if id == exclude {
			continue
		}
		h.enqueue(s, payload, ev.Type)
	}
}

func (h *Hub) enqueue(s *Session, payload []byte, t EventType) {
	select {
	case s.send <- payload:
		metrics.EventsDelivered.WithLabelValues(string(t)).Inc()
	default:
		metrics.EventsDropped.WithLabelValues(string(t)).Inc()
		logger.Warnf("dropping %s event for slow session %s", t, s.id)
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func mustMarshal(ev Event) []byte {
	b, err := json.Marshal(ev)
	if err != nil {
		// Event contains only marshalable fields; keep the hub total anyway.
		logger.Errorf("marshal event: %v", err)
		return []byte(`{}`)
	}
	return b
}
