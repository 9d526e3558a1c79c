// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskpulse-dev/taskpulse/db"
)

var dbCounter atomic.Int64

// NewTestDB opens an isolated in-memory SQLite database with the full schema.
// A single connection serializes writers the way SQLite requires.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:taskpulse_%d?mode=memory&cache=shared&_foreign_keys=1", dbCounter.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), db.Config())
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("Failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.MigrateDatabase(conn); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return conn
}
