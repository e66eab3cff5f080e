package db

import (
	"database/sql"
	"testing"
)

// NewTestDB opens a private in-memory database with the full schema applied.
// It is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("NewTestDB: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := EnsureSchema(conn); err != nil {
		t.Fatalf("NewTestDB: %v", err)
	}

	return conn
}
