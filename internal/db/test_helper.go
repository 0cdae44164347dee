package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// SetupTestDB opens a throwaway SQLite database under t.TempDir. The
// file disappears with the test, so there is nothing to clean up.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger_test.db")
	conn, err := Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}
