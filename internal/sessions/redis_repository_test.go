package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRedisRepository(client, "")
	ctx := context.Background()

	sess := &Session{
		RefreshToken: "tok-1",
		UserID:       "user-1",
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, sess))

	got, err := repo.GetByRefresh(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "user-1", got.UserID)

	require.NoError(t, repo.DeleteByRefresh(ctx, "tok-1"))
	got, err = repo.GetByRefresh(ctx, "tok-1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepositoryMissingToken(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRedisRepository(client, "")

	got, err := repo.GetByRefresh(context.Background(), "no-such-token")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepositoryTTLExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisRepository(client, "")
	ctx := context.Background()

	sess := &Session{
		RefreshToken: "tok-ttl",
		UserID:       "user-1",
		ExpiresAt:    time.Now().UTC().Add(2 * time.Second),
	}
	require.NoError(t, repo.Create(ctx, sess))

	mr.FastForward(5 * time.Second)

	got, err := repo.GetByRefresh(ctx, "tok-ttl")
	require.NoError(t, err)
	require.Nil(t, got)
}
