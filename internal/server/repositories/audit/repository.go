// Package audit persists the append-only administrative audit log.
package audit

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.AuditEntry) error
	// List returns entries newest first.
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error)
}
