package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/launchbase/launchbase-api/internal/models"
)

// SQLiteSubscriptionRepository implements SubscriptionRepository using SQLite.
type SQLiteSubscriptionRepository struct {
	db *sql.DB

	now func() time.Time
}

// NewSQLiteSubscriptionRepository creates a new SQLite subscription repository.
func NewSQLiteSubscriptionRepository(db *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{db: db, now: time.Now}
}

// Upsert inserts or updates a subscription keyed by Stripe subscription ID.
// created_at and user_id are preserved on conflict; status and all
// period/cancellation fields are overwritten.
func (r *SQLiteSubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, status, price_id, quantity,
			cancel_at_period_end, current_period_start, current_period_end,
			canceled_at, trial_start, trial_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			price_id = excluded.price_id,
			quantity = excluded.quantity,
			cancel_at_period_end = excluded.cancel_at_period_end,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			canceled_at = excluded.canceled_at,
			trial_start = excluded.trial_start,
			trial_end = excluded.trial_end,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.UserID,
		string(sub.Status),
		sub.PriceID,
		sub.Quantity,
		boolToInt(sub.CancelAtPeriodEnd),
		formatTime(sub.CurrentPeriodStart),
		formatTime(sub.CurrentPeriodEnd),
		formatNullTime(sub.CanceledAt),
		formatNullTime(sub.TrialStart),
		formatNullTime(sub.TrialEnd),
		formatTime(sub.CreatedAt),
		formatTime(sub.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by ID. Returns nil if not found.
func (r *SQLiteSubscriptionRepository) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	query := selectSubscription + " WHERE id = ?"
	return r.querySubscription(ctx, query, id)
}

// MarkCanceled transitions a subscription to canceled status.
// Returns false when no row matched, which callers treat as a no-op.
func (r *SQLiteSubscriptionRepository) MarkCanceled(ctx context.Context, id string, canceledAt time.Time) (bool, error) {
	query := `
		UPDATE subscriptions
		SET status = ?, canceled_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(models.SubscriptionStatusCanceled),
		formatTime(canceledAt),
		formatTime(r.now()),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark subscription canceled: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// GetCurrentByUserID returns the newest non-canceled subscription for a user.
func (r *SQLiteSubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	query := selectSubscription + `
		WHERE user_id = ? AND status != ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.querySubscription(ctx, query, userID, string(models.SubscriptionStatusCanceled))
}

const selectSubscription = `
	SELECT id, user_id, status, price_id, quantity, cancel_at_period_end,
		current_period_start, current_period_end, canceled_at,
		trial_start, trial_end, created_at, updated_at
	FROM subscriptions
`

func (r *SQLiteSubscriptionRepository) querySubscription(ctx context.Context, query string, args ...any) (*models.Subscription, error) {
	var sub models.Subscription
	var status string
	var priceID sql.NullString
	var cancelAtPeriodEnd int
	var periodStart, periodEnd, createdAt, updatedAt string
	var canceledAt, trialStart, trialEnd sql.NullString

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&sub.ID, &sub.UserID, &status, &priceID, &sub.Quantity, &cancelAtPeriodEnd,
		&periodStart, &periodEnd, &canceledAt, &trialStart, &trialEnd,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}

	sub.Status = models.SubscriptionStatus(status)
	if priceID.Valid {
		sub.PriceID = &priceID.String
	}
	sub.CancelAtPeriodEnd = cancelAtPeriodEnd != 0
	sub.CurrentPeriodStart = parseTime(periodStart)
	sub.CurrentPeriodEnd = parseTime(periodEnd)
	sub.CanceledAt = parseNullTime(canceledAt)
	sub.TrialStart = parseNullTime(trialStart)
	sub.TrialEnd = parseNullTime(trialEnd)
	sub.CreatedAt = parseTime(createdAt)
	sub.UpdatedAt = parseTime(updatedAt)

	return &sub, nil
}
