package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/dbtest"
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

func TestList_FilterAndLimitPlaceholders(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*actor_id,.*FROM\s+audit_admin_log\s+WHERE\s+actor_id\s*=\s*\$1\s+ORDER\s+BY\s+timestamp\s+DESC,\s*id\s+LIMIT\s+\$2\s*$`
	mock.ExpectQuery(q).WithArgs("a1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "action", "target", "details", "timestamp"}).
			AddRow("e1", "a1", "user.remove", "users/u1", nil, time.Now().UTC()))

	got, err := repo.List(context.Background(), models.AuditFilter{ActorID: "a1", Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "user.remove", got[0].Action)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_NoFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+audit_admin_log\s+ORDER\s+BY\s+timestamp\s+DESC,\s*id\s*$`
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "action", "target", "details", "timestamp"}))

	got, err := repo.List(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_AppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(dbtest.Open(t))

	base := time.Now().UTC().Truncate(time.Microsecond)
	details := `{"roleIds":["r1"]}`
	require.NoError(t, repo.Create(ctx, &models.AuditEntry{ActorID: "system", Action: "role.create", Target: "roles/r1", Timestamp: base}))
	require.NoError(t, repo.Create(ctx, &models.AuditEntry{ActorID: "a1", Action: "user.set_roles", Target: "users/u1", Details: &details, Timestamp: base.Add(time.Second)}))

	all, err := repo.List(ctx, models.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "user.set_roles", all[0].Action)
	require.NotNil(t, all[0].Details)

	mine, err := repo.List(ctx, models.AuditFilter{ActorID: "system", Limit: 10})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "role.create", mine[0].Action)
}
