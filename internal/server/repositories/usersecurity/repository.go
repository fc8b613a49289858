// Package usersecurity persists per-user security settings.
package usersecurity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts s. A second row for the same user, or a taken recovery
	// email, yields common.ErrorConflict.
	Create(ctx context.Context, s *models.UserSecurity) (*models.UserSecurity, error)

	// CreateIfAbsent inserts s unless a row, active or deleted, already
	// holds its user. It never fails on that conflict.
	CreateIfAbsent(ctx context.Context, s *models.UserSecurity) error

	// FindByUserID returns the active row of userID.
	FindByUserID(ctx context.Context, userID string) (*models.UserSecurity, error)

	// RestoreByUserID clears the tombstone of userID's row. It reports
	// whether a row was restored.
	RestoreByUserID(ctx context.Context, userID string) (bool, error)

	Update(ctx context.Context, id string, upd models.UserSecurityUpdate, at time.Time) (*models.UserSecurity, error)

	// SetPINState stores the attempt counter and lock deadline.
	SetPINState(ctx context.Context, id string, attempts int, lockedUntil *time.Time, at time.Time) error

	// RecordFailedAttempt increments the attempt counter in the database and
	// returns the new value, so concurrent failures are all counted.
	RecordFailedAttempt(ctx context.Context, id string, at time.Time) (int, error)

	SoftDeleteByUserID(ctx context.Context, userID string, at time.Time) error
	RestoreDeletedWithUser(ctx context.Context, userID string) error
}
