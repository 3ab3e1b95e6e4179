package repository

import (
	"database/sql"
	"testing"

	"github.com/launchbase/launchbase-api/internal/database/migrations"
	_ "github.com/tursodatabase/go-libsql"
)

// setupTestDB creates an in-memory SQLite database for testing.
// It runs migrations and returns a database connection that will be cleaned up
// when the test completes.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// setupTestRepos creates all repositories using a test database.
func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db := setupTestDB(t)
	return NewRepositories(db)
}

// InsertTestUser is a helper to insert a user row directly.
func InsertTestUser(t *testing.T, db *sql.DB, id, email string) {
	t.Helper()
	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES (?, ?, datetime('now'), datetime('now'))
	`
	if _, err := db.Exec(query, id, email); err != nil {
		t.Fatalf("failed to insert test user: %v", err)
	}
}

// InsertTestProduct is a helper to insert a product row directly.
func InsertTestProduct(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	query := `
		INSERT INTO products (id, name, active, created_at, updated_at)
		VALUES (?, ?, 1, datetime('now'), datetime('now'))
	`
	if _, err := db.Exec(query, id, name); err != nil {
		t.Fatalf("failed to insert test product: %v", err)
	}
}

// InsertTestPrice is a helper to insert a price row directly.
func InsertTestPrice(t *testing.T, db *sql.DB, id, productID string, unitAmount int64) {
	t.Helper()
	query := `
		INSERT INTO prices (id, product_id, active, currency, unit_amount, type, created_at)
		VALUES (?, ?, 1, 'usd', ?, 'recurring', datetime('now'))
	`
	if _, err := db.Exec(query, id, productID, unitAmount); err != nil {
		t.Fatalf("failed to insert test price: %v", err)
	}
}
