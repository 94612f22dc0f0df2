package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(0)

	session, err := store.Get(context.Background(), "+1555")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, session)
}

func TestMemoryStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.Set(ctx, "+1555", &models.Session{Stage: models.StageAddress, Items: "1,3"}))

	session, err := store.Get(ctx, "+1555")
	require.NoError(t, err)
	assert.Equal(t, models.StageAddress, session.Stage)
	assert.Equal(t, "1,3", session.Items)
	assert.False(t, session.UpdatedAt.IsZero(), "store should stamp UpdatedAt")
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	original := &models.Session{Stage: models.StageMenu}
	require.NoError(t, store.Set(ctx, "+1555", original))

	// Mutating the value passed in or the value read back must not leak into the store
	original.Stage = models.StageDone
	got, err := store.Get(ctx, "+1555")
	require.NoError(t, err)
	got.Items = "changed"

	again, err := store.Get(ctx, "+1555")
	require.NoError(t, err)
	assert.Equal(t, models.StageMenu, again.Stage)
	assert.Empty(t, again.Items)
}

func TestMemoryStore_TTLHidesStaleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "old", &models.Session{Stage: models.StageOrder, UpdatedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.Set(ctx, "fresh", &models.Session{Stage: models.StageOrder, UpdatedAt: now.Add(-time.Minute)}))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)

	// Hidden sessions are not reported as live, even before a sweep
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	removed, err := store.Expire(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestMemoryStore_Expire(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	now := time.Now()

	require.NoError(t, store.Set(ctx, "a", &models.Session{Stage: models.StageDone, UpdatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, store.Set(ctx, "b", &models.Session{Stage: models.StageMenu, UpdatedAt: now.Add(-30 * time.Hour)}))
	require.NoError(t, store.Set(ctx, "c", &models.Session{Stage: models.StageMenu, UpdatedAt: now}))

	removed, err := store.Expire(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, _ := store.Count(ctx)
	assert.Equal(t, 1, count)

	_, err = store.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	require.NoError(t, store.Set(ctx, "+1555", &models.Session{Stage: models.StageMenu}))
	require.NoError(t, store.Delete(ctx, "+1555"))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	_, err := store.Get(ctx, "+1555")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
