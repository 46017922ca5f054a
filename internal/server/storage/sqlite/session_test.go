package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/famcal/internal/models"
	"github.com/iudanet/famcal/internal/server/storage"
)

func TestSessionStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	session := &models.Session{
		ID:        "session1",
		UserID:    userID,
		CSRFToken: "csrf1",
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	retrieved, err := s.GetSession(ctx, "session1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.CSRFToken, retrieved.CSRFToken)
}

func TestSessionStorage_GetSession_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetSession(ctx, "nosuchsession")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionStorage_DeleteSession(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	session := &models.Session{
		ID:        "session-del",
		UserID:    userID,
		CSRFToken: "csrf",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateSession(ctx, session))

	require.NoError(t, s.DeleteSession(ctx, "session-del"))

	_, err := s.GetSession(ctx, "session-del")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// Повторное удаление - not found
	err = s.DeleteSession(ctx, "session-del")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionStorage_DeleteUserSessions(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)

	for i, id := range []string{"s1", "s2"} {
		session := &models.Session{
			ID:        id,
			UserID:    userID,
			CSRFToken: "csrf",
			ExpiresAt: time.Now().Add(time.Duration(i+1) * time.Hour),
			CreatedAt: time.Now(),
		}
		require.NoError(t, s.CreateSession(ctx, session))
	}

	other := &models.Session{
		ID:        "other",
		UserID:    otherID,
		CSRFToken: "csrf",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateSession(ctx, other))

	count, err := s.DeleteUserSessions(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Чужая сессия не тронута
	_, err = s.GetSession(ctx, "other")
	require.NoError(t, err)
}

func TestSessionStorage_ReplaceUserSessions(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	old := &models.Session{
		ID:        "old-session",
		UserID:    userID,
		CSRFToken: "old-csrf",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateSession(ctx, old))

	replacement := &models.Session{
		ID:        "new-session",
		UserID:    userID,
		CSRFToken: "new-csrf",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.ReplaceUserSessions(ctx, replacement))

	// Ровно одна активная сессия: старая отозвана, новая на месте
	_, err := s.GetSession(ctx, "old-session")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	retrieved, err := s.GetSession(ctx, "new-session")
	require.NoError(t, err)
	assert.Equal(t, "new-csrf", retrieved.CSRFToken)
}

func TestSessionStorage_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	// UTC, чтобы совпадало с datetime('now') в SQLite
	now := time.Now().UTC()
	sessions := []*models.Session{
		{
			ID:        "expired1",
			UserID:    userID,
			CSRFToken: "csrf",
			ExpiresAt: now.Add(-2 * time.Hour),
			CreatedAt: now.Add(-3 * time.Hour),
		},
		{
			ID:        "expired2",
			UserID:    userID,
			CSRFToken: "csrf",
			ExpiresAt: now.Add(-time.Hour),
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "valid",
			UserID:    userID,
			CSRFToken: "csrf",
			ExpiresAt: now.Add(24 * time.Hour),
			CreatedAt: now,
		},
	}

	for _, session := range sessions {
		require.NoError(t, s.CreateSession(ctx, session))
	}

	count, err := s.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = s.GetSession(ctx, "valid")
	require.NoError(t, err)
}
