// Package users declares the repository contract for user rows and its SQL
// implementation.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

// Repository persists users. Active lookups exclude soft-deleted rows;
// "Deleted" lookups require deleted_at IS NOT NULL.
type Repository interface {
	// Create inserts user, assigning ID and timestamps when empty.
	// A duplicate active email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	FindActiveByID(ctx context.Context, id string) (*models.User, error)
	FindDeletedByID(ctx context.Context, id string) (*models.User, error)
	FindByID(ctx context.Context, id string, includeDeleted bool) (*models.User, error)
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, includeDeleted bool) ([]models.User, error)

	// Update applies a partial update to an active user and returns the refreshed row.
	Update(ctx context.Context, id string, upd models.UserUpdate, at time.Time) (*models.User, error)

	// SoftDelete sets deleted_at on an active user. It does not cascade.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Restore clears deleted_at. It fails with common.ErrorConflict when an
	// active user already holds the email.
	Restore(ctx context.Context, id string) error
}
