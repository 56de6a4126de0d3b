package service

import (
	"context"
	"errors"
	"strings"

	"github.com/notewall/notewall/internal/layout"
	"github.com/notewall/notewall/internal/notes"
	"github.com/notewall/notewall/internal/notes/repository"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("title and content are required")
)

// CreateInput carries the caller-supplied fields for a new note. X/Y are
// optional; when either is missing a free board position is allocated.
type CreateInput struct {
	Title   string
	Content string
	OwnerID string
	X       *float64
	Y       *float64
}

// Service defines the note business operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*notes.Note, error)
	Get(ctx context.Context, id string) (*notes.Note, error)
	List(ctx context.Context) ([]*notes.Note, error)
	Update(ctx context.Context, id string, p notes.Patch) (*notes.Note, error)
	Delete(ctx context.Context, id string) error
	Reorganize(ctx context.Context) ([]*notes.Note, error)
}

func New(repo repository.Repository) Service {
	return &noteService{repo: repo}
}

type noteService struct {
	repo repository.Repository
}

func (s *noteService) Create(ctx context.Context, in CreateInput) (*notes.Note, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, ErrValidation
	}

	n := &notes.Note{
		Title:   in.Title,
		Content: in.Content,
		OwnerID: in.OwnerID,
	}
	if in.X != nil && in.Y != nil {
		n.X = *in.X
		n.Y = *in.Y
	} else {
		existing, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		occupied := make([]layout.Point, 0, len(existing))
		for _, e := range existing {
			occupied = append(occupied, layout.Point{X: e.X, Y: e.Y})
		}
		p := layout.Allocate(occupied)
		n.X = p.X
		n.Y = p.Y
	}

	return s.repo.Create(ctx, n)
}

func (s *noteService) Get(ctx context.Context, id string) (*notes.Note, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *noteService) List(ctx context.Context) ([]*notes.Note, error) {
	return s.repo.List(ctx)
}

func (s *noteService) Update(ctx context.Context, id string, p notes.Patch) (*notes.Note, error) {
	n, err := s.repo.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Reorganize assigns every live note a deterministic grid slot in creation
// order and persists the new positions. A note deleted concurrently is
// skipped rather than failing the whole pass.
func (s *noteService) Reorganize(ctx context.Context) ([]*notes.Note, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.ID)
	}
	slots := layout.Reorganize(ids)

	out := make([]*notes.Note, 0, len(list))
	for _, id := range ids {
		p := slots[id]
		x, y := p.X, p.Y
		updated, err := s.repo.Update(ctx, id, notes.Patch{X: &x, Y: &y})
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, updated)
	}
	return out, nil
}
