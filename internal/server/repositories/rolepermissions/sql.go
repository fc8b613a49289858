package rolepermissions

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, roleID, permissionID string, at time.Time) error {
	query := `INSERT INTO role_permissions (role_id, permission_id, granted_at) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, roleID, permissionID, at); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *SQLRepository) DeleteByRoleID(ctx context.Context, roleID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByRoleID(ctx context.Context, roleID string) ([]models.PermissionGrant, error) {
	query :=
		`SELECT p.id, p.action, p.subject, p.description, p.created_at, p.updated_at, p.deleted_at, rp.granted_at
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1 AND p.deleted_at IS NULL
		 ORDER BY p.subject, p.action`

	rows, err := r.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.PermissionGrant, 0)
	for rows.Next() {
		var g models.PermissionGrant
		err := rows.Scan(&g.ID, &g.Action, &g.Subject, &g.Description, &g.CreatedAt, &g.UpdatedAt, &g.DeletedAt, &g.GrantedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
