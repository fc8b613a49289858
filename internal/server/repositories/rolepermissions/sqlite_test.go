package rolepermissions

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/dbtest"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_GrantListRevoke(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)

	role, err := roles.NewSQLRepository(db).Create(ctx, &models.Role{Name: "admin"})
	require.NoError(t, err)

	pr := permissions.NewSQLRepository(db)
	read, err := pr.Create(ctx, &models.Permission{Action: "read", Subject: "users"})
	require.NoError(t, err)
	manage, err := pr.Create(ctx, &models.Permission{Action: "manage", Subject: "roles"})
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Create(ctx, role.ID, read.ID, at))
	require.NoError(t, repo.Create(ctx, role.ID, manage.ID, at))

	got, err := repo.ListByRoleID(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "roles", got[0].Subject)
	assert.True(t, got[1].GrantedAt.Equal(at))

	require.NoError(t, repo.DeleteByRoleID(ctx, role.ID))

	got, err = repo.ListByRoleID(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
