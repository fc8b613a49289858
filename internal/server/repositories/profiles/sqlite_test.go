package profiles

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/dbtest"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	u, err := users.NewSQLRepository(db).Create(context.Background(), &models.User{Email: email, PasswordHash: "h", IsActive: true})
	require.NoError(t, err)
	return u
}

func TestSQLite_OneActiveProfilePerUser(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	first, err := repo.Create(ctx, models.NewDefaultProfile(u.ID))
	require.NoError(t, err)

	_, err = repo.Create(ctx, models.NewDefaultProfile(u.ID))
	assert.ErrorIs(t, err, common.ErrorConflict)

	require.NoError(t, repo.SoftDelete(ctx, first.ID, time.Now().UTC()))
	assert.ErrorIs(t, repo.SoftDelete(ctx, first.ID, time.Now().UTC()), common.ErrorNotFound)

	second, err := repo.Create(ctx, models.NewDefaultProfile(u.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Restore(ctx, first.ID), common.ErrorConflict)

	got, err := repo.FindActiveByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestSQLite_UpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	p, err := repo.Create(ctx, models.NewDefaultProfile(u.ID))
	require.NoError(t, err)

	name := "Ann"
	currency := "EUR"
	got, err := repo.Update(ctx, p.ID, models.ProfileUpdate{
		FirstName:       &name,
		DisplayCurrency: &currency,
		ExtraSettings:   []byte(`{"theme":"dark"}`),
	}, time.Now().UTC())
	require.NoError(t, err)

	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Ann", *got.FirstName)
	assert.Equal(t, "EUR", got.DisplayCurrency)
	assert.Equal(t, "en-US", got.Locale)
	assert.JSONEq(t, `{"theme":"dark"}`, string(got.ExtraSettings))
}

func TestSQLite_CascadeHelpers(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	userRepo := users.NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	// an older tombstone must not come back with the user
	old, err := repo.Create(ctx, models.NewDefaultProfile(u.ID))
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, old.ID, time.Now().UTC().Add(-time.Hour)))

	current, err := repo.Create(ctx, models.NewDefaultProfile(u.ID))
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.SoftDeleteByUserID(ctx, u.ID, at))
	require.NoError(t, userRepo.SoftDelete(ctx, u.ID, at))

	_, err = repo.FindActiveByUserID(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.RestoreDeletedWithUser(ctx, u.ID))

	got, err := repo.FindActiveByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)

	_, err = repo.FindDeletedByID(ctx, old.ID)
	assert.NoError(t, err)
}

func TestSQLite_ForeignKeyToUser(t *testing.T) {
	repo := NewSQLRepository(dbtest.Open(t))

	_, err := repo.Create(context.Background(), models.NewDefaultProfile("00000000-0000-4000-8000-000000000000"))
	require.Error(t, err)
}
