// Package testhelper opens throwaway sqlite databases with the full schema and
// seeds rows for package tests.
package testhelper

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"lolapi/pkg/database"
)

// NewDB returns a migrated database living in t.TempDir.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

// SeedUser inserts a user with a fixed password hash and returns its id.
func SeedUser(t *testing.T, db *sql.DB, username string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES (?, ?, ?, 'x', 'user')
	`, id, username, username+"@example.com")
	require.NoError(t, err)
	return id
}

func SeedChampion(t *testing.T, db *sql.DB, id int64, name string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO champions (id, name, title) VALUES (?, ?, ?)`, id, name, "the "+name)
	require.NoError(t, err)
}

// SeedReview inserts a review directly, bypassing every business rule.
func SeedReview(t *testing.T, db *sql.DB, userID string, championID int64, rating int, text string) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO reviews (rating, title, text, user_id, champion_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rating, "seeded", text, userID, championID, time.Now().UTC())
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
