package storage

import (
	"context"
	"time"

	"github.com/iudanet/famcal/internal/models"
)

// UpdateStorage defines interface for life update post persistence
type UpdateStorage interface {
	// CreateUpdate stores a new update post
	CreateUpdate(ctx context.Context, update *models.Update) error

	// GetUpdateByID retrieves an update post by ID
	// Returns ErrUpdateNotFound if post doesn't exist
	GetUpdateByID(ctx context.Context, updateID string) (*models.Update, error)

	// ListUpdatesBetween retrieves posts with date in [from, to], ordered by date
	// Returns empty slice if no posts found
	ListUpdatesBetween(ctx context.Context, from, to time.Time) ([]*models.Update, error)

	// EditUpdate updates title, body and date of an existing post
	// Returns ErrUpdateNotFound if post doesn't exist
	EditUpdate(ctx context.Context, update *models.Update) error

	// DeleteUpdate deletes an update post by ID
	// Returns ErrUpdateNotFound if post doesn't exist
	DeleteUpdate(ctx context.Context, updateID string) error
}
