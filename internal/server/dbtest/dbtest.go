// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/budgetkeeper/internal/server/migrations"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DSN returns a DSN for a private in-memory database with foreign keys on.
func DSN() string {
	return fmt.Sprintf("file:%s?mode=memory&_pragma=foreign_keys(1)&_time_format=sqlite", uuid.NewString())
}

// Open returns a fresh database with every migration applied. It is closed
// when the test finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", DSN())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
