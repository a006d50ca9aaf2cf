package database

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zuiji/legacy-waitlist/internal/models"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// testIDCounter provides unique IDs across all tests in the package.
// Starts in the EVE character ID range to avoid conflicts with any
// existing data.
var testIDCounter int64 = 90000000

func nextID() int64 {
	return atomic.AddInt64(&testIDCounter, 1)
}

// createTestCharacter inserts a character row and removes it when the test
// ends. Cleanups run LIFO, so rows referencing the character are gone by
// the time the delete fires.
func createTestCharacter(t *testing.T, pool *pgxpool.Pool) *models.Character {
	t.Helper()
	ctx := context.Background()
	id := nextID()
	char := &models.Character{
		ID:   id,
		Name: fmt.Sprintf("Test Pilot %d", id),
	}
	if err := NewCharacterRepository(pool).Upsert(ctx, char); err != nil {
		t.Fatalf("createTestCharacter: %v", err)
	}
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM characters WHERE id = $1`, char.ID) })
	return char
}

// createTestBan inserts the given ban and removes it when the test ends.
func createTestBan(t *testing.T, pool *pgxpool.Pool, repo BanRepository, ban *models.Ban) {
	t.Helper()
	ctx := context.Background()
	if err := repo.Create(ctx, ban); err != nil {
		t.Fatalf("createTestBan: %v", err)
	}
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM bans WHERE id = $1`, ban.ID) })
}
