package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notewall/notewall/internal/notes"
)

func TestMemoryRepoCreateAssignsIdentity(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	a, err := repo.Create(ctx, &notes.Note{Title: "a", Content: "1"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &notes.Note{Title: "b", Content: "2"})
	require.NoError(t, err)

	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, int64(1), a.Revision)
	require.False(t, a.CreatedAt.IsZero())
}

func TestMemoryRepoListExcludesDeleted(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	a, _ := repo.Create(ctx, &notes.Note{Title: "a", Content: "1"})
	b, _ := repo.Create(ctx, &notes.Note{Title: "b", Content: "2"})
	require.NoError(t, repo.Delete(ctx, a.ID))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, b.ID, list[0].ID)

	_, err = repo.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepoPartialUpdate(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	n, _ := repo.Create(ctx, &notes.Note{Title: "title", Content: "content", X: 10, Y: 20})

	newContent := "changed"
	got, err := repo.Update(ctx, n.ID, notes.Patch{Content: &newContent})
	require.NoError(t, err)
	require.Equal(t, "title", got.Title)
	require.Equal(t, "changed", got.Content)
	require.Equal(t, float64(10), got.X)
	require.Equal(t, int64(2), got.Revision)
}

func TestMemoryRepoDeleteTwice(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	n, _ := repo.Create(ctx, &notes.Note{Title: "a", Content: "1"})
	require.NoError(t, repo.Delete(ctx, n.ID))
	require.ErrorIs(t, repo.Delete(ctx, n.ID), ErrNotFound)

	_, err := repo.Update(ctx, n.ID, notes.Patch{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepoConcurrentUpdatesSameNote(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	n, _ := repo.Create(ctx, &notes.Note{Title: "a", Content: "1"})

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			x := float64(1)
			_, err := repo.Update(ctx, n.ID, notes.Patch{X: &x})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, n.ID)
	require.NoError(t, err)
	// every write bumps the revision exactly once
	require.Equal(t, int64(1+writers), got.Revision)
}

func TestMemoryRepoListOrder(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		n, _ := repo.Create(ctx, &notes.Note{Title: "t", Content: "c"})
		ids = append(ids, n.ID)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, n := range list {
		require.Equal(t, ids[i], n.ID)
	}
}
