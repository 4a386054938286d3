// Package dbtest opens migrated throwaway databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/templui/filenest/internal/db"
)

// Open returns a migrated sqlite database stored in t.TempDir().
// The database is closed when the test finishes.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := db.Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })

	err = db.RunMigrations(context.Background(), conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}
