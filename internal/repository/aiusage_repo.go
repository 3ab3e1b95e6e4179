package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/launchbase/launchbase-api/internal/models"
)

// SQLiteAIUsageRepository implements AIUsageRepository using SQLite.
type SQLiteAIUsageRepository struct {
	db *sql.DB
}

// NewSQLiteAIUsageRepository creates a new SQLite AI usage repository.
func NewSQLiteAIUsageRepository(db *sql.DB) *SQLiteAIUsageRepository {
	return &SQLiteAIUsageRepository{db: db}
}

// Create appends one usage ledger row.
func (r *SQLiteAIUsageRepository) Create(ctx context.Context, usage *models.AIUsage) error {
	query := `
		INSERT INTO ai_usage (id, user_id, model, prompt_tokens, completion_tokens,
			total_tokens, usage_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		usage.ID,
		usage.UserID,
		usage.Model,
		usage.PromptTokens,
		usage.CompletionTokens,
		usage.TotalTokens,
		usage.UsageDate,
		formatTime(usage.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create ai usage record: %w", err)
	}

	return nil
}

// GetMonthlySummary aggregates a user's usage for one month ("YYYY-MM").
// Filtering is by prefix match on the usage_date column.
func (r *SQLiteAIUsageRepository) GetMonthlySummary(ctx context.Context, userID, month string) (*AIUsageSummary, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0)
		FROM ai_usage
		WHERE user_id = ? AND usage_date LIKE ?
	`

	var summary AIUsageSummary
	err := r.db.QueryRowContext(ctx, query, userID, month+"-%").Scan(
		&summary.Requests,
		&summary.PromptTokens,
		&summary.CompletionTokens,
		&summary.TotalTokens,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get usage summary: %w", err)
	}

	return &summary, nil
}
