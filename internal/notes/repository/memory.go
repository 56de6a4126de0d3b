package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notewall/notewall/internal/notes"
)

var (
	ErrNotFound = errors.New("note not found")
)

// Repository provides note persistence. Delete is a soft delete: the record
// stays behind its id but is excluded from Get/List, and further mutations
// fail with ErrNotFound.
type Repository interface {
	Create(ctx context.Context, n *notes.Note) (*notes.Note, error)
	Get(ctx context.Context, id string) (*notes.Note, error)
	List(ctx context.Context) ([]*notes.Note, error)
	Update(ctx context.Context, id string, p notes.Patch) (*notes.Note, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepo keeps notes in process memory. Each entry carries its own lock
// so concurrent mutations to the same id are serialized while unrelated ids
// proceed in parallel; the outer lock only guards the map itself.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	note notes.Note
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*entry)}
}

func (m *MemoryRepo) Create(ctx context.Context, n *notes.Note) (*notes.Note, error) {
	now := time.Now().UTC()
	stored := *n
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.Deleted = false
	stored.Revision = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now

	m.mu.Lock()
	m.store[stored.ID] = &entry{note: stored}
	m.mu.Unlock()

	out := stored
	return &out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*notes.Note, error) {
	e := m.lookup(id)
	if e == nil {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.Deleted {
		return nil, ErrNotFound
	}
	out := e.note
	return &out, nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*notes.Note, error) {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.store))
	for _, e := range m.store {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]*notes.Note, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.note.Deleted {
			n := e.note
			out = append(out, &n)
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id string, p notes.Patch) (*notes.Note, error) {
	e := m.lookup(id)
	if e == nil {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.Deleted {
		return nil, ErrNotFound
	}
	if p.Title != nil {
		e.note.Title = *p.Title
	}
	if p.Content != nil {
		e.note.Content = *p.Content
	}
	if p.X != nil {
		e.note.X = *p.X
	}
	if p.Y != nil {
		e.note.Y = *p.Y
	}
	e.note.Revision++
	e.note.UpdatedAt = time.Now().UTC()
	out := e.note
	return &out, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	e := m.lookup(id)
	if e == nil {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.note.Deleted {
		return ErrNotFound
	}
	e.note.Deleted = true
	e.note.Revision++
	e.note.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepo) lookup(id string) *entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[id]
}
