package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notewall/notewall/internal/layout"
	"github.com/notewall/notewall/internal/notes"
	"github.com/notewall/notewall/internal/notes/repository"
)

func newTestService() Service {
	return New(repository.NewMemoryRepo())
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "", Content: "body"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Title: "   ", Content: "body"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateInput{Title: "title", Content: "\t\n"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateAllocatesGridPositions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// grid fills row-major: three columns, then next row
	want := []layout.Point{
		{X: 20, Y: 20}, {X: 340, Y: 20}, {X: 660, Y: 20}, {X: 20, Y: 140},
	}
	for i, p := range want {
		n, err := svc.Create(ctx, CreateInput{Title: "t", Content: "c"})
		require.NoError(t, err)
		require.Equal(t, p.X, n.X, "note %d", i)
		require.Equal(t, p.Y, n.Y, "note %d", i)
	}
}

func TestCreateRespectsExplicitPosition(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	x, y := 123.0, 456.0
	n, err := svc.Create(ctx, CreateInput{Title: "t", Content: "c", X: &x, Y: &y})
	require.NoError(t, err)
	require.Equal(t, 123.0, n.X)
	require.Equal(t, 456.0, n.Y)
}

func TestCreateHalfPositionFallsBackToAllocator(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// only one coordinate given: treat as no position and allocate
	x := 500.0
	n, err := svc.Create(ctx, CreateInput{Title: "t", Content: "c", X: &x})
	require.NoError(t, err)
	require.Equal(t, 20.0, n.X)
	require.Equal(t, 20.0, n.Y)
}

func TestAllocatorSkipsManuallyPlacedNotes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// a note dragged onto the first grid cell blocks it for the allocator
	x, y := 20.0, 20.0
	_, err := svc.Create(ctx, CreateInput{Title: "t", Content: "c", X: &x, Y: &y})
	require.NoError(t, err)

	n, err := svc.Create(ctx, CreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, 340.0, n.X)
	require.Equal(t, 20.0, n.Y)
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", notes.Patch{})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReorganizeAssignsSlotsInCreationOrder(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		x, y := 900.0, 900.0
		n, err := svc.Create(ctx, CreateInput{Title: "t", Content: "c", X: &x, Y: &y})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	moved, err := svc.Reorganize(ctx)
	require.NoError(t, err)
	require.Len(t, moved, 5)

	for i, n := range moved {
		require.Equal(t, ids[i], n.ID)
	}
	require.Equal(t, 20.0, moved[0].X)
	require.Equal(t, 20.0, moved[0].Y)
	require.Equal(t, 340.0, moved[1].X)
	require.Equal(t, 660.0, moved[2].X)
	require.Equal(t, 20.0, moved[3].X)
	require.Equal(t, 140.0, moved[3].Y)

	// reorganize bumps each note's revision
	for _, n := range moved {
		require.Greater(t, n.Revision, int64(1))
	}
}

func TestReorganizeEmptyBoard(t *testing.T) {
	svc := newTestService()

	moved, err := svc.Reorganize(context.Background())
	require.NoError(t, err)
	require.Empty(t, moved)
}
