package session

import (
	"context"
	"sync"
	"testing"

	"gamingrealm-backend/src/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "user-1", sess.UserID)
	assert.False(t, sess.CreatedAt.IsZero())

	got, err := store.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)
}

func TestMemoryStoreGetUnknownID(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.GetSession(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreSessionIDsAreUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sess, err := store.CreateSession(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, seen[sess.ID], "duplicate session id %s", sess.ID)
		seen[sess.ID] = true
	}
}

func TestMemoryStoreSingleSessionPerUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	second, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	// the first session was superseded and is gone
	got, err := store.GetSession(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.GetSession(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
}

func TestMemoryStoreDeleteIsNotIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, store.DeleteSession(ctx, sess.ID))

	err = store.DeleteSession(ctx, sess.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestMemoryStoreDeleteClearsUserIndex(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, store.DeleteSession(ctx, first.ID))

	// creating again after logout must not evict anything that is still live
	second, err := store.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	got, err := store.GetSession(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestMemoryStoreContains(t *testing.T) {
	store := NewMemoryStore()
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

func TestMemoryStoreConcurrentCreateSameUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.CreateSession(ctx, "user-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// single-session mode: exactly one mapping may remain for the user
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.sessions, 1)
	assert.Len(t, store.byUser, 1)
}
