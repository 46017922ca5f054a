package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/famcal/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) string {
	userID := uuid.New().String()
	hash := "hash_" + userID[:8]
	user := &models.User{
		ID:           userID,
		Username:     "testuser_" + userID[:8],
		Role:         models.RoleUser,
		PasswordHash: &hash,
		CreatedAt:    time.Now(),
	}

	err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	return userID
}

func createTestAdmin(t *testing.T, ctx context.Context, s *Storage) string {
	userID := uuid.New().String()
	hash := "hash_" + userID[:8]
	user := &models.User{
		ID:           userID,
		Username:     "admin_" + userID[:8],
		Role:         models.RoleAdmin,
		PasswordHash: &hash,
		CreatedAt:    time.Now(),
	}

	err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	return userID
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
