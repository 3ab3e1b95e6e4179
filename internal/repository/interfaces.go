// Package repository defines repository interfaces for data access.
// All mutation is via single-row upsert/update statements scoped by primary
// key; conflict resolution is handled by the store's ON CONFLICT clause.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/launchbase/launchbase-api/internal/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// SetStripeCustomerID attaches a billing customer ID to a user.
	// Returns false if no such user exists.
	SetStripeCustomerID(ctx context.Context, userID, customerID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines methods for product catalog data access.
type ProductRepository interface {
	Upsert(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ListActive(ctx context.Context) ([]*models.Product, error)
}

// PriceRepository defines methods for price data access.
type PriceRepository interface {
	Upsert(ctx context.Context, price *models.Price) error
	GetByID(ctx context.Context, id string) (*models.Price, error)
	ListActiveByProduct(ctx context.Context, productID string) ([]*models.Price, error)
}

// SubscriptionRepository defines methods for subscription data access.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id string) (*models.Subscription, error)
	// MarkCanceled transitions a subscription to canceled.
	// Returns false if the row does not exist.
	MarkCanceled(ctx context.Context, id string, canceledAt time.Time) (bool, error)
	// GetCurrentByUserID returns the newest non-canceled subscription for a user,
	// or nil if there is none.
	GetCurrentByUserID(ctx context.Context, userID string) (*models.Subscription, error)
}

// AIUsageRepository defines methods for the AI usage ledger.
// Rows are append-only; there is no update or delete.
type AIUsageRepository interface {
	Create(ctx context.Context, usage *models.AIUsage) error
	// GetMonthlySummary aggregates usage for a month given as "YYYY-MM".
	GetMonthlySummary(ctx context.Context, userID, month string) (*AIUsageSummary, error)
}

// AIUsageSummary represents aggregated AI usage for a period.
type AIUsageSummary struct {
	Requests         int   `json:"requests"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Repositories holds all repository instances.
type Repositories struct {
	User         UserRepository
	Product      ProductRepository
	Price        PriceRepository
	Subscription SubscriptionRepository
	AIUsage      AIUsageRepository
}

// NewRepositories creates all repository instances backed by SQLite.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		User:         NewSQLiteUserRepository(db),
		Product:      NewSQLiteProductRepository(db),
		Price:        NewSQLitePriceRepository(db),
		Subscription: NewSQLiteSubscriptionRepository(db),
		AIUsage:      NewSQLiteAIUsageRepository(db),
	}
}

// IsForeignKeyViolation reports whether err is a SQLite foreign key
// constraint failure, i.e. a referenced row does not exist yet.
func IsForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
