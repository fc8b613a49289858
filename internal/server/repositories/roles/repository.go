// Package roles persists roles.
package roles

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts role. A duplicate active name yields common.ErrorConflict.
	Create(ctx context.Context, role *models.Role) (*models.Role, error)

	FindActiveByID(ctx context.Context, id string) (*models.Role, error)
	FindDeletedByID(ctx context.Context, id string) (*models.Role, error)
	FindByID(ctx context.Context, id string, includeDeleted bool) (*models.Role, error)
	FindActiveByName(ctx context.Context, name string) (*models.Role, error)
	// FindByName matches active and deleted rows, newest first.
	FindByName(ctx context.Context, name string) (*models.Role, error)
	// FindActiveByIDs returns the active roles among ids; missing ids are skipped.
	FindActiveByIDs(ctx context.Context, ids []string) ([]models.Role, error)
	List(ctx context.Context, includeDeleted bool) ([]models.Role, error)

	Update(ctx context.Context, id string, upd models.RoleUpdate, at time.Time) (*models.Role, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// Restore clears deleted_at, failing with common.ErrorConflict when an
	// active role holds the name.
	Restore(ctx context.Context, id string) error
}
