package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/audit"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/rolepermissions"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/userroles"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/usersecurity"
)

// SQLRepositoryManager vends the database/sql repositories. The SQL they
// issue is shared by PostgreSQL and SQLite; only migrations differ.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db, string(m.dialect))
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Security(db dbx.DBTX) usersecurity.Repository {
	return usersecurity.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Roles(db dbx.DBTX) roles.Repository {
	return roles.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Permissions(db dbx.DBTX) permissions.Repository {
	return permissions.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) UserRoles(db dbx.DBTX) userroles.Repository {
	return userroles.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) RolePermissions(db dbx.DBTX) rolepermissions.Repository {
	return rolepermissions.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewSQLRepository(db)
}
