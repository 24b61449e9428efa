//go:build !integration && !e2e

package repository

import (
	"database/sql"
	"testing"

	"github.com/Aman3189/soriva-backend-sub009/internal/database"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory database with the full schema applied. The
// database is closed when the test completes.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=ON")
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		db.Close()
	})

	require.NoError(t, database.RunMigrations(db), "failed to run migrations")
	return db
}
