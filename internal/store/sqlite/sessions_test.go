package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/store"
)

func testSession(id, tokenHash string, expiresAt time.Time) *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		ID:         id,
		TokenHash:  tokenHash,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
		LastSeenAt: now,
		IPAddress:  "127.0.0.1",
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := testSession("sess-abc", "hash-1", time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.CreateSession(ctx, sess))

	got, err := s.GetSessionByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", got.ID)
	assert.Equal(t, "127.0.0.1", got.IPAddress)
	assert.False(t, got.IsExpired(time.Now().UTC()))
}

func TestCreateSessionDuplicateTokenHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession("sess-1", "same-hash", time.Now().UTC().Add(time.Hour))))
	err := s.CreateSession(ctx, testSession("sess-2", "same-hash", time.Now().UTC().Add(time.Hour)))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetSessionByTokenHashNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSessionByTokenHash(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTouchSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := testSession("sess-touch", "hash-touch", time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.CreateSession(ctx, sess))

	seenAt := time.Now().UTC().Add(30 * time.Minute)
	require.NoError(t, s.TouchSession(ctx, sess.ID, seenAt))

	got, err := s.GetSessionByTokenHash(ctx, "hash-touch")
	require.NoError(t, err)
	assert.WithinDuration(t, seenAt, got.LastSeenAt, time.Second)
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := testSession("sess-del", "hash-del", time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.CreateSession(ctx, sess))
	require.NoError(t, s.DeleteSession(ctx, sess.ID))

	_, err := s.GetSessionByTokenHash(ctx, "hash-del")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, s.DeleteSession(ctx, sess.ID))
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateSession(ctx, testSession("sess-old", "hash-old", now.Add(-time.Hour))))
	require.NoError(t, s.CreateSession(ctx, testSession("sess-live", "hash-live", now.Add(time.Hour))))

	deleted, err := s.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = s.GetSessionByTokenHash(ctx, "hash-old")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetSessionByTokenHash(ctx, "hash-live")
	assert.NoError(t, err)
}
