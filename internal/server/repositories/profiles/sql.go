package profiles

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, user_id, first_name, last_name, locale, display_currency, extra_settings, created_at, updated_at, deleted_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func scan(row dbx.Scanner) (*models.Profile, error) {
	p := &models.Profile{}
	var extra string
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Locale, &p.DisplayCurrency,
		&extra, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	p.ExtraSettings = []byte(extra)
	return p, nil
}

func (r *SQLRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = dbx.Now()
	}
	p.UpdatedAt = p.CreatedAt
	if len(p.ExtraSettings) == 0 {
		p.ExtraSettings = []byte("{}")
	}

	query :=
		`INSERT INTO profiles (id, user_id, first_name, last_name, locale, display_currency, extra_settings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.FirstName, p.LastName, p.Locale, p.DisplayCurrency,
		string(p.ExtraSettings), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}

	return p, nil
}

func (r *SQLRepository) findOne(ctx context.Context, where string, arg any) (*models.Profile, error) {
	query := `SELECT ` + columns + ` FROM profiles WHERE ` + where

	p, err := scan(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return p, nil
}

func (r *SQLRepository) FindActiveByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.findOne(ctx, `id = $1 AND deleted_at IS NULL`, id)
}

func (r *SQLRepository) FindDeletedByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.findOne(ctx, `id = $1 AND deleted_at IS NOT NULL`, id)
}

func (r *SQLRepository) FindActiveByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return r.findOne(ctx, `user_id = $1 AND deleted_at IS NULL`, userID)
}

func (r *SQLRepository) FindDeletedByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return r.findOne(ctx, `user_id = $1 AND deleted_at IS NOT NULL ORDER BY deleted_at DESC LIMIT 1`, userID)
}

func (r *SQLRepository) List(ctx context.Context, includeDeleted bool) ([]models.Profile, error) {
	query := `SELECT ` + columns + ` FROM profiles`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Profile, 0)
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

func (r *SQLRepository) Update(ctx context.Context, id string, upd models.ProfileUpdate, at time.Time) (*models.Profile, error) {
	var a dbx.Assignments
	if upd.FirstName != nil {
		a.Add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		a.Add("last_name", *upd.LastName)
	}
	if upd.Locale != nil {
		a.Add("locale", *upd.Locale)
	}
	if upd.DisplayCurrency != nil {
		a.Add("display_currency", *upd.DisplayCurrency)
	}
	if upd.ExtraSettings != nil {
		a.Add("extra_settings", string(upd.ExtraSettings))
	}

	if a.Len() > 0 {
		a.Add("updated_at", at)
		query := `UPDATE profiles SET ` + a.SQL() + ` WHERE id = ` + a.Arg(id) + ` AND deleted_at IS NULL`

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
	query := `UPDATE profiles SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) Restore(ctx context.Context, id string) error {
	query := `UPDATE profiles SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) SoftDeleteByUserID(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE profiles SET deleted_at = $1 WHERE user_id = $2 AND deleted_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *SQLRepository) RestoreDeletedWithUser(ctx context.Context, userID string) error {
	query :=
		`UPDATE profiles SET deleted_at = NULL
		 WHERE user_id = $1
		   AND deleted_at = (SELECT u.deleted_at FROM users u WHERE u.id = $2)`

	if _, err := r.db.ExecContext(ctx, query, userID, userID); err != nil {
		return dbx.Classify(err)
	}
	return nil
}
