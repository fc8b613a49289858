package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

// RoleService manages roles and the permissions granted to them.
type RoleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         Clock
}

func NewRoleService(db *sql.DB, m repomanager.RepositoryManager) *RoleService {
	return &RoleService{db: db, repomanager: m, now: dbx.Now}
}

func roleNotFound(id string) error {
	return common.NewError(common.ErrorNotFound, "Role with ID '%s' not found", id)
}

func roleNameTaken(name string) error {
	return common.NewError(common.ErrorConflict, "Role with name '%s' already exists", name)
}

func (s *RoleService) Create(ctx context.Context, in CreateRoleInput) (*models.Role, error) {
	var r *models.Role
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Roles(tx)

		if _, err := repo.FindActiveByName(ctx, in.Name); err == nil {
			return roleNameTaken(in.Name)
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		now := s.now()
		var err error
		r, err = repo.Create(ctx, &models.Role{Name: in.Name, Description: in.Description, CreatedAt: now})
		if err != nil {
			return conflictOr(err, "Role with name '%s' already exists", in.Name)
		}

		return recordAudit(ctx, s.repomanager, tx, now, "role.create", "roles/"+r.ID, map[string]string{"name": in.Name})
	})
	if err != nil {
		return nil, internal(err, "create role")
	}

	return r, nil
}

func (s *RoleService) FindAll(ctx context.Context, includeDeleted bool) ([]models.Role, error) {
	list, err := s.repomanager.Roles(s.db).List(ctx, includeDeleted)
	if err != nil {
		return nil, internal(err, "list roles")
	}
	return list, nil
}

func (s *RoleService) FindOne(ctx context.Context, id string) (*models.Role, error) {
	r, err := s.repomanager.Roles(s.db).FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, roleNotFound(id)
		}
		return nil, internal(err, "find role")
	}
	return r, nil
}

func (s *RoleService) Update(ctx context.Context, id string, in RoleInput) (*models.Role, error) {
	var r *models.Role
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()

		var err error
		r, err = s.repomanager.Roles(tx).Update(ctx, id, models.RoleUpdate{Name: in.Name, Description: in.Description}, now)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return roleNotFound(id)
		case errors.Is(err, common.ErrorConflict):
			return roleNameTaken(*in.Name)
		case err != nil:
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, now, "role.update", "roles/"+id, nil)
	})
	if err != nil {
		return nil, internal(err, "update role")
	}

	return r, nil
}

func (s *RoleService) Remove(ctx context.Context, id string) (*models.DeleteConfirmation, error) {
	var conf *models.DeleteConfirmation
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Roles(tx)

		if _, err := repo.FindActiveByID(ctx, id); err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}
			if _, err := repo.FindDeletedByID(ctx, id); err == nil {
				return common.NewError(common.ErrorAlreadyDeleted, "Role with ID '%s' is already deleted", id)
			}
			return roleNotFound(id)
		}

		at := s.now()
		if err := repo.SoftDelete(ctx, id, at); err != nil {
			return err
		}
		conf = models.NewDeleteConfirmation("Role", "roles", id, at)

		return recordAudit(ctx, s.repomanager, tx, at, "role.remove", "roles/"+id, nil)
	})
	if err != nil {
		return nil, internal(err, "remove role")
	}

	return conf, nil
}

// Recover restores a soft-deleted role unless an active role holds its name.
func (s *RoleService) Recover(ctx context.Context, id string) (*models.Role, error) {
	var r *models.Role
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Roles(tx)

		deleted, err := repo.FindDeletedByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewError(common.ErrorNotFound, "Deleted role with ID '%s' not found", id)
			}
			return err
		}

		if err := repo.Restore(ctx, id); err != nil {
			return conflictOr(err, "Cannot recover role: name '%s' is already in use", deleted.Name)
		}

		if r, err = repo.FindActiveByID(ctx, id); err != nil {
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, s.now(), "role.recover", "roles/"+id, nil)
	})
	if err != nil {
		return nil, internal(err, "recover role")
	}

	return r, nil
}

// EnsureDefaults creates the built-in roles that no row, active or deleted,
// holds yet. A deleted built-in role stays deleted.
func (s *RoleService) EnsureDefaults(ctx context.Context) error {
	defaults := []models.Role{
		{Name: common.RoleAdmin, Description: ptr("Full administrative access")},
		{Name: common.RoleUser, Description: ptr("Regular application user")},
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Roles(tx)
		for i := range defaults {
			role := defaults[i]

			_, err := repo.FindByName(ctx, role.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return err
			}

			role.CreatedAt = s.now()
			if _, err := repo.Create(ctx, &role); err != nil {
				return err
			}
			if err := recordAudit(ctx, s.repomanager, tx, role.CreatedAt, "role.create", "roles/"+role.ID, map[string]string{"name": role.Name}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return internal(err, "seed default roles")
	}
	return nil
}

// SetPermissions replaces the permission set of an active role.
func (s *RoleService) SetPermissions(ctx context.Context, roleID string, permissionIDs []string) ([]models.PermissionGrant, error) {
	ids := dedupe(permissionIDs)
	if len(ids) == 0 {
		return nil, common.NewError(common.ErrorBadRequest, "At least one permission is required")
	}

	var grants []models.PermissionGrant
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Roles(tx).FindActiveByID(ctx, roleID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return roleNotFound(roleID)
			}
			return err
		}

		found, err := s.repomanager.Permissions(tx).FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return common.NewError(common.ErrorNotFound, "One or more permissions not found")
		}

		rp := s.repomanager.RolePermissions(tx)
		if err := rp.DeleteByRoleID(ctx, roleID); err != nil {
			return err
		}

		now := s.now()
		for _, id := range ids {
			if err := rp.Create(ctx, roleID, id, now); err != nil {
				return err
			}
		}

		if grants, err = rp.ListByRoleID(ctx, roleID); err != nil {
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, now, "role.set_permissions", "roles/"+roleID, map[string][]string{"permissionIds": ids})
	})
	if err != nil {
		return nil, internal(err, "set role permissions")
	}

	return grants, nil
}

func (s *RoleService) Permissions(ctx context.Context, roleID string) ([]models.PermissionGrant, error) {
	if _, err := s.FindOne(ctx, roleID); err != nil {
		return nil, err
	}

	grants, err := s.repomanager.RolePermissions(s.db).ListByRoleID(ctx, roleID)
	if err != nil {
		return nil, internal(err, "list role permissions")
	}
	return grants, nil
}

// PermissionService manages the permission catalogue.
type PermissionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         Clock
}

func NewPermissionService(db *sql.DB, m repomanager.RepositoryManager) *PermissionService {
	return &PermissionService{db: db, repomanager: m, now: dbx.Now}
}

func (s *PermissionService) Create(ctx context.Context, in CreatePermissionInput) (*models.Permission, error) {
	var p *models.Permission
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()

		var err error
		p, err = s.repomanager.Permissions(tx).Create(ctx, &models.Permission{
			Action:      in.Action,
			Subject:     in.Subject,
			Description: in.Description,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		return recordAudit(ctx, s.repomanager, tx, now, "permission.create", "permissions/"+p.ID, nil)
	})
	if err != nil {
		return nil, internal(err, "create permission")
	}

	return p, nil
}

func (s *PermissionService) FindAll(ctx context.Context) ([]models.Permission, error) {
	list, err := s.repomanager.Permissions(s.db).List(ctx)
	if err != nil {
		return nil, internal(err, "list permissions")
	}
	return list, nil
}

func (s *PermissionService) FindOne(ctx context.Context, id string) (*models.Permission, error) {
	p, err := s.repomanager.Permissions(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, "Permission with ID '%s' not found", id)
		}
		return nil, internal(err, "find permission")
	}
	return p, nil
}

func ptr[T any](v T) *T {
	return &v
}
