package users

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, email, password_hash, is_active, created_at, updated_at, deleted_at`

// SQLRepository works with both the pgx and sqlite drivers.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func scan(row dbx.Scanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = dbx.Now()
	}
	user.UpdatedAt = user.CreatedAt

	query :=
		`INSERT INTO users (id, email, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}

	return user, nil
}

func (r *SQLRepository) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT ` + columns + ` FROM users WHERE ` + where

	u, err := scan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return u, nil
}

func (r *SQLRepository) FindActiveByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `id = $1 AND deleted_at IS NULL`, id)
}

func (r *SQLRepository) FindDeletedByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `id = $1 AND deleted_at IS NOT NULL`, id)
}

func (r *SQLRepository) FindByID(ctx context.Context, id string, includeDeleted bool) (*models.User, error) {
	if !includeDeleted {
		return r.FindActiveByID(ctx, id)
	}
	return r.findOne(ctx, `id = $1`, id)
}

func (r *SQLRepository) FindActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `email = $1 AND deleted_at IS NULL`, email)
}

func (r *SQLRepository) List(ctx context.Context, includeDeleted bool) ([]models.User, error) {
	query := `SELECT ` + columns + ` FROM users`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.User, 0)
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, id string, upd models.UserUpdate, at time.Time) (*models.User, error) {
	var a dbx.Assignments
	if upd.Email != nil {
		a.Add("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		a.Add("password_hash", *upd.PasswordHash)
	}
	if upd.IsActive != nil {
		a.Add("is_active", *upd.IsActive)
	}

	if a.Len() > 0 {
		a.Add("updated_at", at)
		query := `UPDATE users SET ` + a.SQL() + ` WHERE id = ` + a.Arg(id) + ` AND deleted_at IS NULL`

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
	query := `UPDATE users SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) Restore(ctx context.Context, id string) error {
	query := `UPDATE users SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.ExpectAffected(res)
}
