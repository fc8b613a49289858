package permissions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, action, subject, description, created_at, updated_at, deleted_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func scan(row dbx.Scanner) (*models.Permission, error) {
	p := &models.Permission{}
	if err := row.Scan(&p.ID, &p.Action, &p.Subject, &p.Description, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLRepository) Create(ctx context.Context, p *models.Permission) (*models.Permission, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = dbx.Now()
	}
	p.UpdatedAt = p.CreatedAt

	query :=
		`INSERT INTO permissions (id, action, subject, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.Action, p.Subject, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return p, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*models.Permission, error) {
	query := `SELECT ` + columns + ` FROM permissions WHERE id = $1 AND deleted_at IS NULL`

	p, err := scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return p, nil
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]models.Permission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Permission, 0)
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Permission, error) {
	if len(ids) == 0 {
		return []models.Permission{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + columns + ` FROM permissions WHERE id IN (` + dbx.Placeholders(1, len(ids)) + `) AND deleted_at IS NULL`
	return r.query(ctx, query, args...)
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Permission, error) {
	return r.query(ctx, `SELECT `+columns+` FROM permissions WHERE deleted_at IS NULL ORDER BY subject, action`)
}
