package notes

import "time"

// Note is the canonical board note record as held by the server-side store.
// Revision increases on every mutation so clients can detect stale events.
type Note struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	OwnerID   string    `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	X         float64   `json:"x" bson:"x"`
	Y         float64   `json:"y" bson:"y"`
	Deleted   bool      `json:"-" bson:"deleted"`
	Revision  int64     `json:"revision" bson:"revision"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title   *string
	Content *string
	X       *float64
	Y       *float64
}

// Empty reports whether the patch carries no changes at all.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.X == nil && p.Y == nil
}
