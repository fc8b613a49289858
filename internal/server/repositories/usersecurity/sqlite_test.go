package usersecurity

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

func ptr(s string) *string { return &s }

func TestSQLite_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	_, err := repo.FindByUserID(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	created, err := repo.Create(ctx, &models.UserSecurity{UserID: u.ID})
	require.NoError(t, err)
	assert.False(t, created.HasPIN)

	_, err = repo.Create(ctx, &models.UserSecurity{UserID: u.ID})
	assert.ErrorIs(t, err, common.ErrorConflict)

	got, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Zero(t, got.PINAttempts)
	assert.Nil(t, got.RecoveryEmail)
}

func TestSQLite_UpdatePINResetsState(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	s, err := repo.Create(ctx, &models.UserSecurity{UserID: u.ID})
	require.NoError(t, err)

	until := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	require.NoError(t, repo.SetPINState(ctx, s.ID, 3, &until, time.Now().UTC()))

	locked, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, locked.PINAttempts)
	require.NotNil(t, locked.PINLockedUntil)
	assert.True(t, locked.PINLockedUntil.Equal(until))

	got, err := repo.Update(ctx, s.ID, models.UserSecurityUpdate{SetPIN: true, PINHash: ptr("salt:key"), Phone: ptr("+15551234567")}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, got.HasPIN)
	assert.Zero(t, got.PINAttempts)
	assert.Nil(t, got.PINLockedUntil)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+15551234567", *got.Phone)

	cleared, err := repo.Update(ctx, s.ID, models.UserSecurityUpdate{SetPIN: true, Phone: ptr("")}, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, cleared.HasPIN)
	assert.Nil(t, cleared.Phone)
}

func TestSQLite_RecoveryEmailUnique(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)

	s1, err := repo.Create(ctx, &models.UserSecurity{UserID: seedUser(t, db, "a@b.com").ID})
	require.NoError(t, err)
	s2, err := repo.Create(ctx, &models.UserSecurity{UserID: seedUser(t, db, "c@d.com").ID})
	require.NoError(t, err)

	_, err = repo.Update(ctx, s1.ID, models.UserSecurityUpdate{RecoveryEmail: ptr("r@x.com")}, time.Now().UTC())
	require.NoError(t, err)

	_, err = repo.Update(ctx, s2.ID, models.UserSecurityUpdate{RecoveryEmail: ptr("r@x.com")}, time.Now().UTC())
	assert.ErrorIs(t, err, common.ErrorConflict)

	// empty values are stored as NULL and never collide
	_, err = repo.Update(ctx, s1.ID, models.UserSecurityUpdate{RecoveryEmail: ptr("")}, time.Now().UTC())
	require.NoError(t, err)
	_, err = repo.Update(ctx, s2.ID, models.UserSecurityUpdate{RecoveryEmail: ptr("")}, time.Now().UTC())
	require.NoError(t, err)
}

func TestSQLite_CascadeHelpers(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	userRepo := users.NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	s, err := repo.Create(ctx, &models.UserSecurity{UserID: u.ID})
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.SoftDeleteByUserID(ctx, u.ID, at))
	require.NoError(t, userRepo.SoftDelete(ctx, u.ID, at))

	_, err = repo.FindByUserID(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.RestoreDeletedWithUser(ctx, u.ID))

	got, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func countRows(t *testing.T, db *sql.DB, userID string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM user_security WHERE user_id = $1`, userID).Scan(&n))
	return n
}

func TestSQLite_RestoreAndCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	// no row at all: inserted
	require.NoError(t, repo.CreateIfAbsent(ctx, &models.UserSecurity{UserID: u.ID}))
	s, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)

	// active row: left alone
	require.NoError(t, repo.CreateIfAbsent(ctx, &models.UserSecurity{UserID: u.ID}))
	assert.Equal(t, 1, countRows(t, db, u.ID))

	restored, err := repo.RestoreByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, restored)

	// deleted row: still no conflict, and it can be brought back
	require.NoError(t, repo.SoftDeleteByUserID(ctx, u.ID, time.Now().UTC()))
	require.NoError(t, repo.CreateIfAbsent(ctx, &models.UserSecurity{UserID: u.ID}))
	assert.Equal(t, 1, countRows(t, db, u.ID))

	restored, err = repo.RestoreByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, restored)

	got, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Nil(t, got.DeletedAt)
}

func TestSQLite_RecordFailedAttempt(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewSQLRepository(db)
	u := seedUser(t, db, "a@b.com")

	s, err := repo.Create(ctx, &models.UserSecurity{UserID: u.ID})
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		n, err := repo.RecordFailedAttempt(ctx, s.ID, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	got, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.PINAttempts)

	_, err = repo.RecordFailedAttempt(ctx, "00000000-0000-4000-8000-000000000000", time.Now().UTC())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
