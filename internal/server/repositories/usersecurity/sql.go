package usersecurity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, user_id, security_pin_hash, pin_attempts, pin_locked_until, recovery_hint, recovery_email, phone, created_at, updated_at, deleted_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func scan(row dbx.Scanner) (*models.UserSecurity, error) {
	s := &models.UserSecurity{}
	err := row.Scan(&s.ID, &s.UserID, &s.PINHash, &s.PINAttempts, &s.PINLockedUntil,
		&s.RecoveryHint, &s.RecoveryEmail, &s.Phone, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		return nil, err
	}
	s.HasPIN = s.PINHash != nil
	return s, nil
}

// nullable maps "" to NULL.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (r *SQLRepository) Create(ctx context.Context, s *models.UserSecurity) (*models.UserSecurity, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = dbx.Now()
	}
	s.UpdatedAt = s.CreatedAt

	query :=
		`INSERT INTO user_security (id, user_id, security_pin_hash, pin_attempts, pin_locked_until, recovery_hint, recovery_email, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.PINHash, s.PINAttempts, s.PINLockedUntil,
		s.RecoveryHint, s.RecoveryEmail, s.Phone, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}

	s.HasPIN = s.PINHash != nil
	return s, nil
}

func (r *SQLRepository) CreateIfAbsent(ctx context.Context, s *models.UserSecurity) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = dbx.Now()
	}
	s.UpdatedAt = s.CreatedAt

	query :=
		`INSERT INTO user_security (id, user_id, pin_attempts, created_at, updated_at)
		 VALUES ($1, $2, 0, $3, $4)
		 ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.CreatedAt, s.UpdatedAt); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *SQLRepository) FindByUserID(ctx context.Context, userID string) (*models.UserSecurity, error) {
	query := `SELECT ` + columns + ` FROM user_security WHERE user_id = $1 AND deleted_at IS NULL`

	s, err := scan(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return s, nil
}

func (r *SQLRepository) RestoreByUserID(ctx context.Context, userID string) (bool, error) {
	query := `UPDATE user_security SET deleted_at = NULL WHERE user_id = $1 AND deleted_at IS NOT NULL`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, dbx.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbx.Classify(err)
	}
	return n > 0, nil
}

func (r *SQLRepository) findByID(ctx context.Context, id string) (*models.UserSecurity, error) {
	query := `SELECT ` + columns + ` FROM user_security WHERE id = $1 AND deleted_at IS NULL`

	s, err := scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return s, nil
}

func (r *SQLRepository) Update(ctx context.Context, id string, upd models.UserSecurityUpdate, at time.Time) (*models.UserSecurity, error) {
	var a dbx.Assignments
	if upd.RecoveryEmail != nil {
		a.Add("recovery_email", nullable(*upd.RecoveryEmail))
	}
	if upd.Phone != nil {
		a.Add("phone", nullable(*upd.Phone))
	}
	if upd.RecoveryHint != nil {
		a.Add("recovery_hint", nullable(*upd.RecoveryHint))
	}
	if upd.SetPIN {
		a.Add("security_pin_hash", upd.PINHash)
		a.Add("pin_attempts", 0)
		a.Add("pin_locked_until", nil)
	}

	if a.Len() > 0 {
		a.Add("updated_at", at)
		query := `UPDATE user_security SET ` + a.SQL() + ` WHERE id = ` + a.Arg(id) + ` AND deleted_at IS NULL`

		res, err := r.db.ExecContext(ctx, query, a.Args()...)
		if err != nil {
			return nil, dbx.Classify(err)
		}
		if err := dbx.ExpectAffected(res); err != nil {
			return nil, err
		}
	}

	return r.findByID(ctx, id)
}

func (r *SQLRepository) SetPINState(ctx context.Context, id string, attempts int, lockedUntil *time.Time, at time.Time) error {
	query :=
		`UPDATE user_security SET pin_attempts = $1, pin_locked_until = $2, updated_at = $3
		 WHERE id = $4 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, attempts, lockedUntil, at, id)
	if err != nil {
		return dbx.Classify(err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) RecordFailedAttempt(ctx context.Context, id string, at time.Time) (int, error) {
	query :=
		`UPDATE user_security SET pin_attempts = pin_attempts + 1, updated_at = $1
		 WHERE id = $2 AND deleted_at IS NULL
		 RETURNING pin_attempts`

	var attempts int
	if err := r.db.QueryRowContext(ctx, query, at, id).Scan(&attempts); err != nil {
		return 0, dbx.Classify(err)
	}
	return attempts, nil
}

func (r *SQLRepository) SoftDeleteByUserID(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE user_security SET deleted_at = $1 WHERE user_id = $2 AND deleted_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return dbx.Classify(err)
	}
	return nil
}

func (r *SQLRepository) RestoreDeletedWithUser(ctx context.Context, userID string) error {
	query :=
		`UPDATE user_security SET deleted_at = NULL
		 WHERE user_id = $1
		   AND deleted_at = (SELECT u.deleted_at FROM users u WHERE u.id = $2)`

	if _, err := r.db.ExecContext(ctx, query, userID, userID); err != nil {
		return dbx.Classify(err)
	}
	return nil
}
