package roles

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, name, description, created_at, updated_at, deleted_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func scan(row dbx.Scanner) (*models.Role, error) {
	r := &models.Role{}
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLRepository) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	if role.CreatedAt.IsZero() {
		role.CreatedAt = dbx.Now()
	}
	role.UpdatedAt = role.CreatedAt

	query :=
		`INSERT INTO roles (id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, role.ID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}

	return role, nil
}

func (r *SQLRepository) findOne(ctx context.Context, where string, arg any) (*models.Role, error) {
	query := `SELECT ` + columns + ` FROM roles WHERE ` + where

	role, err := scan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return role, nil
}

func (r *SQLRepository) FindActiveByID(ctx context.Context, id string) (*models.Role, error) {
	return r.findOne(ctx, `id = $1 AND deleted_at IS NULL`, id)
}

func (r *SQLRepository) FindDeletedByID(ctx context.Context, id string) (*models.Role, error) {
	return r.findOne(ctx, `id = $1 AND deleted_at IS NOT NULL`, id)
}

func (r *SQLRepository) FindByID(ctx context.Context, id string, includeDeleted bool) (*models.Role, error) {
	if !includeDeleted {
		return r.FindActiveByID(ctx, id)
	}
	return r.findOne(ctx, `id = $1`, id)
}

func (r *SQLRepository) FindActiveByName(ctx context.Context, name string) (*models.Role, error) {
	return r.findOne(ctx, `name = $1 AND deleted_at IS NULL`, name)
}

func (r *SQLRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	return r.findOne(ctx, `name = $1 ORDER BY created_at DESC LIMIT 1`, name)
}

func (r *SQLRepository) query(ctx context.Context, query string, args ...any) ([]models.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Role, 0)
	for rows.Next() {
		role, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) FindActiveByIDs(ctx context.Context, ids []string) ([]models.Role, error) {
	if len(ids) == 0 {
		return []models.Role{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + columns + ` FROM roles WHERE id IN (` + dbx.Placeholders(1, len(ids)) + `) AND deleted_at IS NULL ORDER BY name`
	return r.query(ctx, query, args...)
}

func (r *SQLRepository) List(ctx context.Context, includeDeleted bool) ([]models.Role, error) {
	query := `SELECT ` + columns + ` FROM roles`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY name, created_at`

	return r.query(ctx, query)
}

func (r *SQLRepository) Update(ctx context.Context, id string, upd models.RoleUpdate, at time.Time) (*models.Role, error) {
	var a dbx.Assignments
	if upd.Name != nil {
		a.Add("name", *upd.Name)
	}
	if upd.Description != nil {
		a.Add("description", *upd.Description)
	}

	if a.Len() > 0 {
		a.Add("updated_at", at)
		query := `UPDATE roles SET ` + a.SQL() + ` WHERE id = ` + a.Arg(id) + ` AND deleted_at IS NULL`

		res, err := r.db.ExecContext(ctx, query, a.Args()...)
		if err != nil {
			return nil, dbx.Classify(err)
		}
		if err := dbx.ExpectAffected(res); err != nil {
			return nil, err
		}
	}

	return r.FindActiveByID(ctx, id)
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE roles SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) Restore(ctx context.Context, id string) error {
	query := `UPDATE roles SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.ExpectAffected(res)
}
