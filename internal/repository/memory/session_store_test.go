package memory

import (
	"context"
	"testing"
	"time"

	xerrors "duka-auth-service/internal/pkg/errors"
	"duka-auth-service/internal/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string, userID int64, expiresAt time.Time) *session.Session {
	now := time.Now()
	return &session.Session{
		SessionID:    id,
		UserID:       userID,
		AccessToken:  "access-" + id,
		RefreshToken: "refresh-" + id,
		IsActive:     true,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSessionStore_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, store.Insert(ctx, newSession("s1", 1, expires)))

	got, err := store.FindBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "access-s1", got.AccessToken)
	assert.True(t, got.IsActive)

	// Duplicate identifiers are rejected.
	assert.Error(t, store.Insert(ctx, newSession("s1", 1, expires)))

	_, err = store.FindBySessionID(ctx, "missing")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestSessionStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	require.NoError(t, store.Insert(ctx, newSession("s1", 1, time.Now().Add(time.Hour))))

	got, err := store.FindBySessionID(ctx, "s1")
	require.NoError(t, err)
	got.AccessToken = "mutated"

	again, err := store.FindBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "access-s1", again.AccessToken)
}

func TestSessionStore_UpdateAccessToken(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	require.NoError(t, store.Insert(ctx, newSession("s1", 1, time.Now().Add(time.Hour))))
	require.NoError(t, store.UpdateAccessToken(ctx, "s1", "new-token"))

	got, err := store.FindBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "new-token", got.AccessToken)

	err = store.UpdateAccessToken(ctx, "missing", "new-token")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestSessionStore_DeactivateIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	require.NoError(t, store.Insert(ctx, newSession("s1", 1, time.Now().Add(time.Hour))))

	require.NoError(t, store.Deactivate(ctx, "s1"))
	got, err := store.FindBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Repeats and unknown identifiers are no-ops.
	require.NoError(t, store.Deactivate(ctx, "s1"))
	require.NoError(t, store.Deactivate(ctx, "missing"))
}

func TestSessionStore_FindActiveByUserID(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, store.Insert(ctx, newSession("a1", 1, expires)))
	require.NoError(t, store.Insert(ctx, newSession("a2", 1, expires)))
	require.NoError(t, store.Insert(ctx, newSession("b1", 2, expires)))
	require.NoError(t, store.Deactivate(ctx, "a2"))

	got, err := store.FindActiveByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].SessionID)
}

func TestSessionStore_DeactivateAllForUser(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, store.Insert(ctx, newSession("a1", 1, expires)))
	require.NoError(t, store.Insert(ctx, newSession("a2", 1, expires)))
	require.NoError(t, store.Insert(ctx, newSession("b1", 2, expires)))

	require.NoError(t, store.DeactivateAllForUser(ctx, 1))

	got, err := store.FindActiveByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.FindActiveByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSessionStore_DeactivateExpiredBefore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Now()

	require.NoError(t, store.Insert(ctx, newSession("old1", 1, now.Add(-time.Hour))))
	require.NoError(t, store.Insert(ctx, newSession("old2", 2, now.Add(-time.Minute))))
	require.NoError(t, store.Insert(ctx, newSession("live", 1, now.Add(time.Hour))))

	count, err := store.DeactivateExpiredBefore(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := store.FindBySessionID(ctx, "live")
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	count, err = store.DeactivateExpiredBefore(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
