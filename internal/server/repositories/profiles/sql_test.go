package profiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewSQLRepository(db), mock, db
}

func TestCreate_StoresExtraSettingsAsText(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+profiles\s*\(id,\s*user_id,.*extra_settings,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,.*\$9\)\s*$`
	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), "u1", nil, nil, "en-US", "USD", `{"a":1}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &models.Profile{UserID: "u1", Locale: "en-US", DisplayCurrency: "USD", ExtraSettings: []byte(`{"a":1}`)}
	_, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDeletedByUserID_LatestTombstone(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"id", "user_id", "first_name", "last_name", "locale", "display_currency", "extra_settings", "created_at", "updated_at", "deleted_at"}
	q := `(?s)^SELECT\s+.*FROM\s+profiles\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NOT\s+NULL\s+ORDER\s+BY\s+deleted_at\s+DESC\s+LIMIT\s+1\s*$`

	mock.ExpectQuery(q).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "u1", "Ann", nil, "en-US", "USD", "{}", now, now, now))

	p, err := repo.FindDeletedByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	require.NotNil(t, p.FirstName)
	assert.Equal(t, "Ann", *p.FirstName)
	assert.Nil(t, p.LastName)
	assert.JSONEq(t, "{}", string(p.ExtraSettings))
}

func TestUpdate_NothingToUpdateOnlyReads(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+profiles\s+WHERE\s+id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL`).
		WithArgs("p1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "p1", models.ProfileUpdate{}, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteByUserID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+profiles\s+SET\s+deleted_at\s*=\s*\$1\s+WHERE\s+user_id\s*=\s*\$2`).
		WillReturnError(errors.New("db down"))

	err := repo.SoftDeleteByUserID(context.Background(), "u1", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}
