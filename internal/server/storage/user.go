package storage

import (
	"context"

	"github.com/iudanet/famcal/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if username already exists
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves user by normalized (lower case) username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// ListUsers retrieves all users ordered by username
	ListUsers(ctx context.Context) ([]*models.User, error)

	// UpdateUser updates user information (full row from the loaded record;
	// partial-update semantics are the caller's responsibility)
	// Returns ErrUserNotFound if user doesn't exist,
	// ErrUserAlreadyExists on username collision,
	// ErrLastAdmin if the update would demote the only admin
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser deletes user by ID, cascading to sessions, setup tokens
	// and authored updates
	// Returns ErrUserNotFound if user doesn't exist,
	// ErrLastAdmin if the user is the only admin
	DeleteUser(ctx context.Context, userID string) error

	// SetPasswordHash stores a new password hash for the user
	// Returns ErrUserNotFound if user doesn't exist
	SetPasswordHash(ctx context.Context, userID, hash string) error

	// ResetPasswordHash stores a new password hash and atomically revokes
	// all of the user's sessions and setup tokens. Used for admin-forced
	// resets so a stolen session cannot survive them.
	// Returns ErrUserNotFound if user doesn't exist
	ResetPasswordHash(ctx context.Context, userID, hash string) error

	// CountAdmins returns the number of admin accounts
	CountAdmins(ctx context.Context) (int, error)
}
