package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/launchbase/launchbase-api/internal/models"
)

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB

	now func() time.Time
}

// NewSQLiteUserRepository creates a new SQLite user repository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db, now: time.Now}
}

// Upsert inserts or updates a user keyed by provider ID.
// created_at is preserved on conflict.
func (r *SQLiteUserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, stripe_customer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.StripeCustomerID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID. Returns nil if not found.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, stripe_customer_id, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// SetStripeCustomerID attaches a billing customer ID to a user.
func (r *SQLiteUserRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) (bool, error) {
	query := `
		UPDATE users
		SET stripe_customer_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, customerID, formatTime(r.now()), userID)
	if err != nil {
		return false, fmt.Errorf("failed to set stripe customer id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Delete removes a user. Dependent subscriptions and usage rows cascade.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var stripeCustomerID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&user.ID, &user.Email, &stripeCustomerID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if stripeCustomerID.Valid {
		user.StripeCustomerID = &stripeCustomerID.String
	}
	user.CreatedAt = parseTime(createdAt)
	user.UpdatedAt = parseTime(updatedAt)

	return &user, nil
}
