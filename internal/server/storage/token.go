package storage

import (
	"context"
	"time"

	"github.com/iudanet/famcal/internal/models"
)

// SetupTokenStorage defines interface for password setup token persistence
type SetupTokenStorage interface {
	// IssueSetupToken atomically deletes any prior tokens for the user and
	// inserts the given one. At most one live token per user may exist.
	IssueSetupToken(ctx context.Context, token *models.SetupToken) error

	// GetSetupToken retrieves a setup token by its opaque ID
	// Returns ErrTokenNotFound if token doesn't exist
	GetSetupToken(ctx context.Context, tokenID string) (*models.SetupToken, error)

	// DeleteUserSetupTokens deletes all setup tokens for a user
	// Returns number of deleted tokens
	DeleteUserSetupTokens(ctx context.Context, userID string) (int, error)

	// DeleteExpiredSetupTokens removes all expired tokens
	// Returns number of deleted tokens
	DeleteExpiredSetupTokens(ctx context.Context) (int, error)

	// ConsumeSetupToken atomically looks up the token, stores the password
	// hash for its owner, deletes the owner's setup tokens and sessions, and
	// inserts the given session (UserID is filled in from the token).
	// Expired tokens are deleted on lookup.
	// Returns ErrTokenNotFound if the token is absent or expired at now.
	ConsumeSetupToken(ctx context.Context, tokenID, passwordHash string, session *models.Session, now time.Time) (*models.User, error)
}
