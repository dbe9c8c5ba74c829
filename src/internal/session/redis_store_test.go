package session

import (
	"context"
	"testing"
	"time"

	"gamingrealm-backend/src/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
}

func TestRedisStoreGetMiss(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)

	got, err := store.GetSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreMultiSessionPerUser(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	first, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	second, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	// unlike the in-memory backend, both sessions stay live
	got, err := store.GetSession(ctx, first.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	got, err = store.GetSession(ctx, second.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRedisStoreDeleteMissingSession(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, store.DeleteSession(ctx, sess.ID))

	err = store.DeleteSession(ctx, sess.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRedisStoreContains(t *testing.T) {
	store, _ := newTestRedisStore(t, 0)
	ctx := context.Background()

	ok, err := store.Contains(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	sess, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	ok, err = store.Contains(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
