// Package migrations embeds the goose schema migrations for every supported
// database dialect and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the FS directory holding migrations for a goose dialect name.
func Dir(dialect string) string {
	if dialect == "sqlite3" {
		return "sqlite"
	}
	return "postgres"
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration for dialect ("pgx" or "sqlite3").
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, Dir(dialect)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
