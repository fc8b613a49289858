package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/cryptox"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

// UserService manages users, their role assignments and their lifecycle.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cascade     bool
	now         Clock
	hash        func(string) (string, error)
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		cascade:     cfg.CascadeSoftDelete,
		now:         dbx.Now,
		hash:        cryptox.HashSecret,
	}
}

func userNotFound(id string) error {
	return common.NewError(common.ErrorNotFound, "User with ID '%s' not found", id)
}

// Create registers a user together with the default profile and security
// row. The "user" role is assigned when it exists.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.UserView, error) {
	if in.Password != in.PasswordConfirmed {
		return nil, common.NewError(common.ErrorBadRequest, "Passwords do not match")
	}

	emailTaken := func() error {
		return common.NewError(common.ErrorConflict, "User with email '%s' already exists", in.Email)
	}

	if _, err := s.repomanager.Users(s.db).FindActiveByEmail(ctx, in.Email); err == nil {
		return nil, emailTaken()
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, internal(err, "look up user")
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, internal(err, "hash password")
	}

	var view *models.UserView
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()

		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        in.Email,
			PasswordHash: hash,
			IsActive:     true,
			CreatedAt:    now,
		})
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return emailTaken()
			}
			return err
		}

		p := models.NewDefaultProfile(u.ID)
		p.CreatedAt = now
		if p, err = s.repomanager.Profiles(tx).Create(ctx, p); err != nil {
			return err
		}

		if _, err := s.repomanager.Security(tx).Create(ctx, &models.UserSecurity{UserID: u.ID, CreatedAt: now}); err != nil {
			return err
		}

		role, err := s.repomanager.Roles(tx).FindActiveByName(ctx, common.RoleUser)
		switch {
		case err == nil:
			if err := s.repomanager.UserRoles(tx).Create(ctx, u.ID, role.ID, now); err != nil {
				return err
			}
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		roles, err := s.repomanager.UserRoles(tx).ListByUserID(ctx, u.ID)
		if err != nil {
			return err
		}

		view = &models.UserView{User: *u, Roles: roles, Profile: p}
		return recordAudit(ctx, s.repomanager, tx, now, "user.create", "users/"+u.ID, nil)
	})
	if err != nil {
		return nil, internal(err, "create user")
	}

	return view, nil
}

func (s *UserService) FindAll(ctx context.Context, includeDeleted bool) ([]models.User, error) {
	list, err := s.repomanager.Users(s.db).List(ctx, includeDeleted)
	if err != nil {
		return nil, internal(err, "list users")
	}
	return list, nil
}

// FindOne returns an active user with their active roles.
func (s *UserService) FindOne(ctx context.Context, id string) (*models.UserView, error) {
	u, err := s.repomanager.Users(s.db).FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, userNotFound(id)
		}
		return nil, internal(err, "find user")
	}

	roles, err := s.repomanager.UserRoles(s.db).ListByUserID(ctx, id)
	if err != nil {
		return nil, internal(err, "list user roles")
	}

	return &models.UserView{User: *u, Roles: roles}, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	upd := models.UserUpdate{Email: in.Email, IsActive: in.IsActive}

	if in.Password != nil {
		if in.PasswordConfirmed == nil || *in.Password != *in.PasswordConfirmed {
			return nil, common.NewError(common.ErrorBadRequest, "Passwords do not match")
		}
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, internal(err, "hash password")
		}
		upd.PasswordHash = &hash
	}

	var u *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()

		var err error
		u, err = s.repomanager.Users(tx).Update(ctx, id, upd, now)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return userNotFound(id)
		case errors.Is(err, common.ErrorConflict):
			return common.NewError(common.ErrorConflict, "User with email '%s' already exists", *in.Email)
		case err != nil:
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, now, "user.update", "users/"+id, fieldsOf(in))
	})
	if err != nil {
		return nil, internal(err, "update user")
	}

	return u, nil
}

func fieldsOf(in UpdateUserInput) map[string][]string {
	var f []string
	if in.Email != nil {
		f = append(f, "email")
	}
	if in.IsActive != nil {
		f = append(f, "isActive")
	}
	if in.Password != nil {
		f = append(f, "password")
	}
	return map[string][]string{"fields": f}
}

// Remove soft-deletes an active user. With cascading enabled the profile
// and security rows are tombstoned with the same timestamp.
func (s *UserService) Remove(ctx context.Context, id string) (*models.DeleteConfirmation, error) {
	var at time.Time
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := repo.FindActiveByID(ctx, id); err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			if _, err := repo.FindDeletedByID(ctx, id); err == nil {
				return common.NewError(common.ErrorAlreadyDeleted, "User with ID '%s' is already deleted", id)
			}
			return userNotFound(id)
		}

		at = s.now()
		if err := repo.SoftDelete(ctx, id, at); err != nil {
			return err
		}

		if s.cascade {
			if err := s.repomanager.Profiles(tx).SoftDeleteByUserID(ctx, id, at); err != nil {
				return err
			}
			if err := s.repomanager.Security(tx).SoftDeleteByUserID(ctx, id, at); err != nil {
				return err
			}
		}

		return recordAudit(ctx, s.repomanager, tx, at, "user.remove", "users/"+id, nil)
	})
	if err != nil {
		return nil, internal(err, "remove user")
	}

	return models.NewDeleteConfirmation("User", "users", id, at), nil
}

// Recover restores a soft-deleted user. It fails with a conflict when the
// email now belongs to another active user.
func (s *UserService) Recover(ctx context.Context, id string) (*models.User, error) {
	var u *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		deleted, err := repo.FindDeletedByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, "Deleted user with ID '%s' not found", id)
			}
			return err
		}

		// children are matched against the user's tombstone, so restore them first
		if s.cascade {
			if err := s.repomanager.Profiles(tx).RestoreDeletedWithUser(ctx, id); err != nil {
				return conflictOr(err, "An active profile already exists for user '%s'", id)
			}
			if err := s.repomanager.Security(tx).RestoreDeletedWithUser(ctx, id); err != nil {
				return conflictOr(err, "Security settings of user '%s' conflict with an active record", id)
			}
		}

		if err := repo.Restore(ctx, id); err != nil {
			return conflictOr(err, "Cannot recover user: email '%s' is already in use", deleted.Email)
		}

		if u, err = repo.FindActiveByID(ctx, id); err != nil {
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, s.now(), "user.recover", "users/"+id, nil)
	})
	if err != nil {
		return nil, internal(err, "recover user")
	}

	return u, nil
}

func conflictOr(err error, format string, args ...any) error {
	if errors.Is(err, common.ErrorConflict) {
		return common.NewError(common.ErrorConflict, format, args...)
	}
	return err
}

// SetRoles replaces every role assignment of an active user.
func (s *UserService) SetRoles(ctx context.Context, userID string, roleIDs []string) (*models.UserView, error) {
	ids := dedupe(roleIDs)
	if len(ids) == 0 {
		return nil, common.NewError(common.ErrorBadRequest, "At least one role is required")
	}
	if len(ids) > 10 {
		return nil, common.NewError(common.ErrorBadRequest, "At most 10 roles can be assigned")
	}

	var view *models.UserView
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).FindActiveByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return userNotFound(userID)
			}
			return err
		}

		found, err := s.repomanager.Roles(tx).FindActiveByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return common.NewError(common.ErrorNotFound, "One or more roles not found")
		}

		ur := s.repomanager.UserRoles(tx)
		if _, err := ur.DeleteByUserID(ctx, userID); err != nil {
			return err
		}

		now := s.now()
		for _, id := range ids {
			if err := ur.Create(ctx, userID, id, now); err != nil {
				return fmt.Errorf("assign role %s: %w", id, err)
			}
		}

		roles, err := ur.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		view = &models.UserView{User: *u, Roles: roles}

		return recordAudit(ctx, s.repomanager, tx, now, "user.set_roles", "users/"+userID, map[string][]string{"roleIds": ids})
	})
	if err != nil {
		return nil, internal(err, "set user roles")
	}

	return view, nil
}
