// Package permissions persists (action, subject) permissions.
package permissions

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Permission) (*models.Permission, error)
	FindByID(ctx context.Context, id string) (*models.Permission, error)
	// FindByIDs returns the active permissions among ids.
	FindByIDs(ctx context.Context, ids []string) ([]models.Permission, error)
	List(ctx context.Context) ([]models.Permission, error)
}
