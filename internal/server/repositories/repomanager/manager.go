// Package repomanager vends repository implementations bound to a database
// handle or transaction, so services can run several repositories inside a
// single dbx.WithTx callback.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/audit"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/rolepermissions"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/userroles"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/usersecurity"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Security(db dbx.DBTX) usersecurity.Repository
	Roles(db dbx.DBTX) roles.Repository
	Permissions(db dbx.DBTX) permissions.Repository
	UserRoles(db dbx.DBTX) userroles.Repository
	RolePermissions(db dbx.DBTX) rolepermissions.Repository
	Audit(db dbx.DBTX) audit.Repository
}
