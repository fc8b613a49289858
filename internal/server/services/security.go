package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/cryptox"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

// SecurityService manages the per-user security row and PIN checks.
type SecurityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxAttempts int
	lockout     time.Duration
	now         Clock
	hash        func(string) (string, error)
}

func NewSecurityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SecurityService {
	return &SecurityService{
		db:          db,
		repomanager: m,
		maxAttempts: cfg.PINMaxAttempts,
		lockout:     cfg.PINLockoutDuration,
		now:         dbx.Now,
		hash:        cryptox.HashSecret,
	}
}

// ensure returns the security row of an active user. A row tombstoned
// together with the user is restored; otherwise a fresh row is inserted.
// Losing a concurrent insert re-reads the winner's row.
func (s *SecurityService) ensure(ctx context.Context, tx dbx.DBTX, userID string) (*models.UserSecurity, error) {
	if _, err := s.repomanager.Users(tx).FindActiveByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, userNotFound(userID)
		}
		return nil, err
	}

	repo := s.repomanager.Security(tx)

	sec, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return sec, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	restored, err := repo.RestoreByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !restored {
		if err := repo.CreateIfAbsent(ctx, &models.UserSecurity{UserID: userID, CreatedAt: s.now()}); err != nil {
			return nil, err
		}
	}

	return repo.FindByUserID(ctx, userID)
}

func (s *SecurityService) Get(ctx context.Context, userID string) (*models.UserSecurity, error) {
	sec, err := s.ensure(ctx, s.db, userID)
	if err != nil {
		return nil, internal(err, "load security settings")
	}
	return sec, nil
}

// Update applies a partial update. An empty pin clears the PIN; any PIN
// change resets the attempt counter and lock.
func (s *SecurityService) Update(ctx context.Context, userID string, in UpdateSecurityInput) (*models.UserSecurity, error) {
	upd := models.UserSecurityUpdate{
		RecoveryEmail: in.RecoveryEmail,
		Phone:         in.Phone,
		RecoveryHint:  in.RecoveryHint,
	}

	if in.PIN != nil {
		upd.SetPIN = true
		if *in.PIN != "" {
			if !validPIN(*in.PIN) {
				return nil, common.NewError(common.ErrorBadRequest, "PIN must be exactly 4 digits")
			}
			hash, err := s.hash(*in.PIN)
			if err != nil {
				return nil, internal(err, "hash PIN")
			}
			upd.PINHash = &hash
		}
	}

	var sec *models.UserSecurity
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := s.ensure(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		sec, err = s.repomanager.Security(tx).Update(ctx, cur.ID, upd, now)
		if err != nil {
			return conflictOr(err, "Recovery email is already in use")
		}

		return recordAudit(ctx, s.repomanager, tx, now, "security.update", "users/"+userID+"/security", nil)
	})
	if err != nil {
		return nil, internal(err, "update security settings")
	}

	return sec, nil
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// VerifyPIN checks pin against the stored hash. Wrong PINs count towards
// the lockout; reaching the maximum locks PIN checks for the lockout period.
func (s *SecurityService) VerifyPIN(ctx context.Context, userID, pin string) error {
	var failed error
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		sec, err := s.ensure(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		if sec.Locked(now) {
			return common.NewError(common.ErrorUnauthorized, "PIN is locked until %s", sec.PINLockedUntil.UTC().Format(time.RFC3339))
		}
		if sec.PINHash == nil {
			return common.NewError(common.ErrorBadRequest, "No PIN is set")
		}

		ok, err := cryptox.VerifySecret(pin, *sec.PINHash)
		if err != nil {
			return err
		}

		repo := s.repomanager.Security(tx)
		if ok {
			return repo.SetPINState(ctx, sec.ID, 0, nil, now)
		}

		// the failed attempt must be committed, so report it after the tx
		attempts, err := repo.RecordFailedAttempt(ctx, sec.ID, now)
		if err != nil {
			return err
		}
		if attempts >= s.maxAttempts {
			until := now.Add(s.lockout)
			failed = common.NewError(common.ErrorUnauthorized, "PIN is locked until %s", until.UTC().Format(time.RFC3339))
			return repo.SetPINState(ctx, sec.ID, 0, &until, now)
		}
		failed = common.NewError(common.ErrorUnauthorized, "Invalid PIN")
		return nil
	})
	if err != nil {
		return internal(err, "verify PIN")
	}
	return failed
}
