package realtime

import "github.com/notewall/notewall/internal/notes"

// EventType identifies a push-channel message.
type EventType string

const (
	// EventSessionReady is sent once per connection and carries the session
	// id a client must attach to create requests as its origin token.
	EventSessionReady EventType = "sessionReady"

	EventNoteCreated EventType = "noteCreated"
	EventNoteUpdated EventType = "noteUpdated"
	EventNoteDeleted EventType = "noteDeleted"
)

// Event is the push-channel envelope. Note is set for created/updated, ID
// for deleted, SessionID for sessionReady.
type Event struct {
	Type      EventType   `json:"type"`
	Note      *notes.Note `json:"note,omitempty"`
	ID        string      `json:"id,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
}
