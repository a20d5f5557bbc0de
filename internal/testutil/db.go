package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/matchtrack/internal/db"
	"github.com/codr1/matchtrack/internal/db/store"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SeedPlayer inserts a player with the given name and returns it.
func SeedPlayer(t *testing.T, database *db.DB, name string) store.Player {
	t.Helper()

	player, err := database.Queries.CreatePlayer(context.Background(), store.CreatePlayerParams{
		Name:   name,
		Locale: "en-GB",
		Now:    time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed player %q: %v", name, err)
	}
	return player
}
