// Package reconcile maintains a client-side mirror of the note board. It
// merges synchronous request responses and asynchronous broadcast events
// into one consistent view, with per-note states for in-flight drags and
// edits. Conflicts resolve last-writer-wins in processing order; broadcasts
// carrying a revision at or below the mirrored one are dropped as stale.
package reconcile

import (
	"sort"
	"sync"

	"github.com/notewall/notewall/internal/notes"
	"github.com/notewall/notewall/internal/realtime"
)

// State is the lifecycle state of one mirrored note.
type State int

const (
	// StateSynced means the local record matches the last processed
	// canonical record.
	StateSynced State = iota
	// StateDragging means a local drag is in flight; incoming positions
	// are suppressed until the drag ends.
	StateDragging
	// StateEditing means a local text edit is in flight; the draft buffer
	// shadows title/content until saved or cancelled.
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateEditing:
		return "editing"
	default:
		return "synced"
	}
}

type entry struct {
	note         notes.Note
	state        State
	draftTitle   string
	draftContent string
}

// Mirror is the local note view for one client session. All methods are
// safe for concurrent use; each call is applied atomically, so a broadcast
// and a response touching the same note never interleave field writes.
type Mirror struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewMirror() *Mirror {
	return &Mirror{entries: map[string]*entry{}}
}

// SetAll replaces the whole mirror with a fresh full-list fetch. Required
// after (re)connecting, since missed broadcasts are never replayed.
// In-flight drag and edit state is discarded.
func (m *Mirror) SetAll(list []*notes.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry, len(list))
	for _, n := range list {
		m.entries[n.ID] = &entry{note: *n}
	}
}

// Reset empties the mirror, for logout teardown.
func (m *Mirror) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]*entry{}
}

// Get returns a copy of the mirrored note.
func (m *Mirror) Get(id string) (notes.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return notes.Note{}, false
	}
	return e.note, true
}

// StateOf returns the lifecycle state of a mirrored note.
func (m *Mirror) StateOf(id string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return StateSynced, false
	}
	return e.state, true
}

// Notes returns a snapshot of all mirrored notes sorted by creation time.
func (m *Mirror) Notes() []notes.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notes.Note, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.note)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ApplyCreated merges a noteCreated broadcast (or the creator's own
// response). An already-known id is treated as an update.
func (m *Mirror) ApplyCreated(n *notes.Note) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[n.ID]; ok {
		return m.applyUpdateLocked(n)
	}
	m.entries[n.ID] = &entry{note: *n}
	return true
}

// ApplyUpdated merges a noteUpdated broadcast. Stale revisions are dropped,
// which also makes the echo of a client's own update a no-op. Returns
// whether the mirror changed.
func (m *Mirror) ApplyUpdated(n *notes.Note) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[n.ID]; !ok {
		// update for a note this client never saw (e.g. create was lost);
		// adopt it rather than staying inconsistent
		m.entries[n.ID] = &entry{note: *n}
		return true
	}
	return m.applyUpdateLocked(n)
}

func (m *Mirror) applyUpdateLocked(n *notes.Note) bool {
	e := m.entries[n.ID]
	if n.Revision != 0 && e.note.Revision != 0 && n.Revision <= e.note.Revision {
		return false
	}
	switch e.state {
	case StateDragging:
		// local drag owns the position until it ends
		x, y := e.note.X, e.note.Y
		e.note = *n
		e.note.X, e.note.Y = x, y
	default:
		// editing keeps its draft buffer; the synced record still moves
		e.note = *n
	}
	return true
}

// ApplyDeleted removes a note on a noteDeleted broadcast, regardless of
// local state.
func (m *Mirror) ApplyDeleted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return false
	}
	delete(m.entries, id)
	return true
}

// ApplyResponse merges the canonical record from this client's own request.
// It is applied unconditionally, even after a local cancel: a stale success
// still becomes the new canonical state. The note returns to synced.
func (m *Mirror) ApplyResponse(n *notes.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[n.ID]
	if !ok {
		m.entries[n.ID] = &entry{note: *n}
		return
	}
	e.note = *n
	e.state = StateSynced
	e.draftTitle, e.draftContent = "", ""
}

// Apply dispatches one push-channel event into the mirror. sessionReady
// events carry no note and are ignored here.
func (m *Mirror) Apply(ev realtime.Event) bool {
	switch ev.Type {
	case realtime.EventNoteCreated:
		if ev.Note == nil {
			return false
		}
		return m.ApplyCreated(ev.Note)
	case realtime.EventNoteUpdated:
		if ev.Note == nil {
			return false
		}
		return m.ApplyUpdated(ev.Note)
	case realtime.EventNoteDeleted:
		return m.ApplyDeleted(ev.ID)
	default:
		return false
	}
}

// BeginDrag moves a synced note into dragging; incoming broadcast positions
// are suppressed until EndDrag.
func (m *Mirror) BeginDrag(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.state != StateSynced {
		return false
	}
	e.state = StateDragging
	return true
}

// DragTo moves the local position only; nothing is sent to the server
// until the drag ends.
func (m *Mirror) DragTo(id string, x, y float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.state != StateDragging {
		return false
	}
	e.note.X, e.note.Y = x, y
	return true
}

// EndDrag finishes a drag and returns the position the caller should send
// as an update request. The canonical response then arrives via
// ApplyResponse.
func (m *Mirror) EndDrag(id string) (x, y float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, found := m.entries[id]
	if !found || e.state != StateDragging {
		return 0, 0, false
	}
	e.state = StateSynced
	return e.note.X, e.note.Y, true
}

// CancelDrag abandons a drag without a server call. The dragged position
// stays in place locally until the next canonical record arrives.
func (m *Mirror) CancelDrag(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.state != StateDragging {
		return false
	}
	e.state = StateSynced
	return true
}

// BeginEdit moves a synced note into editing and seeds the draft buffer
// from the current record.
func (m *Mirror) BeginEdit(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.state != StateSynced {
		return false
	}
	e.state = StateEditing
	e.draftTitle = e.note.Title
	e.draftContent = e.note.Content
	return true
}

// SetDraft updates the in-progress edit buffer.
func (m *Mirror) SetDraft(id, title, content string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.state != StateEditing {
		return false
	}
	e.draftTitle, e.draftContent = title, content
	return true
}

// Draft returns the current edit buffer.
func (m *Mirror) Draft(id string) (title, content string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, found := m.entries[id]
	if !found || e.state != StateEditing {
		return "", "", false
	}
	return e.draftTitle, e.draftContent, true
}

// SaveEdit finishes an edit and returns the draft the caller should send as
// an update request; the note is optimistically synced with the draft until
// the canonical response lands.
func (m *Mirror) SaveEdit(id string) (title, content string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, found := m.entries[id]
	if !found || e.state != StateEditing {
		return "", "", false
	}
	title, content = e.draftTitle, e.draftContent
	e.note.Title, e.note.Content = title, content
	e.state = StateSynced
	e.draftTitle, e.draftContent = "", ""
	return title, content, true
}

// CancelEdit discards the draft buffer and reverts to the last synced
// record.
func (m *Mirror) CancelEdit(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.state != StateEditing {
		return false
	}
	e.state = StateSynced
	e.draftTitle, e.draftContent = "", ""
	return true
}
