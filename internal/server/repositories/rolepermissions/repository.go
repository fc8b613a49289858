// Package rolepermissions persists the role-to-permission join table.
package rolepermissions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, roleID, permissionID string, at time.Time) error
	DeleteByRoleID(ctx context.Context, roleID string) error
	ListByRoleID(ctx context.Context, roleID string) ([]models.PermissionGrant, error)
}
