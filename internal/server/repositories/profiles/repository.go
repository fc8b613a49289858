// Package profiles declares the repository contract for user profiles and
// its SQL implementation.
package profiles

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts p. A second active profile for the same user yields
	// common.ErrorConflict.
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)

	FindActiveByID(ctx context.Context, id string) (*models.Profile, error)
	FindDeletedByID(ctx context.Context, id string) (*models.Profile, error)
	FindActiveByUserID(ctx context.Context, userID string) (*models.Profile, error)
	// FindDeletedByUserID returns the most recently deleted profile of the user.
	FindDeletedByUserID(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context, includeDeleted bool) ([]models.Profile, error)

	Update(ctx context.Context, id string, upd models.ProfileUpdate, at time.Time) (*models.Profile, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Restore(ctx context.Context, id string) error

	// SoftDeleteByUserID tombstones the active profile of userID, if any.
	SoftDeleteByUserID(ctx context.Context, userID string, at time.Time) error
	// RestoreDeletedWithUser restores the profiles of userID that were
	// deleted at the same instant as the (still deleted) user row.
	RestoreDeletedWithUser(ctx context.Context, userID string) error
}
