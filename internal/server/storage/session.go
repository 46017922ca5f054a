package storage

import (
	"context"

	"github.com/iudanet/famcal/internal/models"
)

// SessionStorage defines interface for session persistence
type SessionStorage interface {
	// CreateSession stores a new session
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves session by its opaque ID
	// Returns ErrSessionNotFound if session doesn't exist
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// DeleteSession deletes one session by ID
	// Returns ErrSessionNotFound if session doesn't exist
	DeleteSession(ctx context.Context, sessionID string) error

	// DeleteUserSessions deletes all sessions for a user
	// Returns number of deleted sessions
	DeleteUserSessions(ctx context.Context, userID string) (int, error)

	// ReplaceUserSessions atomically deletes all of the user's sessions and
	// inserts the given one, enforcing the single-active-session policy
	ReplaceUserSessions(ctx context.Context, session *models.Session) error

	// DeleteExpiredSessions removes all expired sessions
	// Returns number of deleted sessions
	DeleteExpiredSessions(ctx context.Context) (int, error)
}
