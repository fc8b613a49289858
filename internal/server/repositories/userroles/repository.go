// Package userroles persists the user-to-role join table. Rows have no
// lifecycle of their own: they are deleted and recreated wholesale.
package userroles

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, roleID string, at time.Time) error
	// DeleteByUserID removes every assignment of userID and reports how many were removed.
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	// ListByUserID returns the active roles assigned to userID.
	ListByUserID(ctx context.Context, userID string) ([]models.RoleAssignment, error)
}
