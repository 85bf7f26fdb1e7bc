package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates an in-memory SQLite database for testing.
//
// IMPORTANT: Always use this function in tests, never use file-based databases.
// Using file-based databases in tests risks accidentally destroying a real
// timer store if the test database path isn't properly isolated.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    db := NewTestDB(t)
//	    defer db.Close()
//
//	    // Use db for testing...
//	}
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every new connection to :memory: is a fresh database.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return &DB{DB: sqlDB, path: ":memory:"}
}
