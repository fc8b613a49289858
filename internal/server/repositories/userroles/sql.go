package userroles

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

func (r *SQLRepository) Create(ctx context.Context, userID, roleID string, at time.Time) error {
	query := `INSERT INTO user_roles (user_id, role_id, assigned_at) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID, roleID, at); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *SQLRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) ListByUserID(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	query :=
		`SELECT r.id, r.name, r.description, r.created_at, r.updated_at, r.deleted_at, ur.assigned_at
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = $1 AND r.deleted_at IS NULL
		 ORDER BY r.name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.RoleAssignment, 0)
	for rows.Next() {
		var a models.RoleAssignment
		err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt, &a.AssignedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
