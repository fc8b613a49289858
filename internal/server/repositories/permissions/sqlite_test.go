package permissions

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/dbtest"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_CreateFindList(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(dbtest.Open(t))

	read, err := repo.Create(ctx, &models.Permission{Action: "read", Subject: "users"})
	require.NoError(t, err)
	write, err := repo.Create(ctx, &models.Permission{Action: "write", Subject: "roles"})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, read.ID)
	require.NoError(t, err)
	assert.Equal(t, "users", got.Subject)

	_, err = repo.FindByID(ctx, "00000000-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	some, err := repo.FindByIDs(ctx, []string{write.ID, "00000000-0000-4000-8000-000000000000"})
	require.NoError(t, err)
	require.Len(t, some, 1)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "roles", all[0].Subject)
}
