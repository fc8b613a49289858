package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/dbtest"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type env struct {
	db    *sql.DB
	rm    repomanager.RepositoryManager
	cfg   *config.Config
	users *UserService
	prof  *ProfileService
	roles *RoleService
	perms *PermissionService
	sec   *SecurityService
	auth  *AuthService
	audit *AuditService
}

func newEnv(t *testing.T, mutate ...func(*config.Config)) *env {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	for _, m := range mutate {
		m(cfg)
	}

	db := dbtest.Open(t)
	rm := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)

	return &env{
		db:    db,
		rm:    rm,
		cfg:   cfg,
		users: NewUserService(db, rm, cfg),
		prof:  NewProfileService(db, rm),
		roles: NewRoleService(db, rm),
		perms: NewPermissionService(db, rm),
		sec:   NewSecurityService(db, rm, cfg),
		auth:  NewAuthService(db, rm, cfg),
		audit: NewAuditService(db, rm, nil),
	}
}

func (e *env) createUser(t *testing.T, email string) *models.UserView {
	t.Helper()
	u, err := e.users.Create(context.Background(), CreateUserInput{Email: email, Password: "x", PasswordConfirmed: "x"})
	require.NoError(t, err)
	return u
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}
