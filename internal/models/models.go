// Package models defines the domain models for the application.
package models

import "time"

// ========================================
// Users
// ========================================

// User mirrors an identity-provider user record.
// Rows are created/deleted by identity webhooks; the Stripe customer ID is
// attached on first checkout.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ========================================
// Catalog (products and prices)
// ========================================

// Product mirrors a Stripe product catalog entry.
// Products are never deleted locally; they are deactivated via Active=false.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Active      bool              `json:"active"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// PriceType distinguishes recurring from one-time prices.
type PriceType string

const (
	PriceTypeRecurring PriceType = "recurring"
	PriceTypeOneTime   PriceType = "one_time"
)

// Price is a purchasable variant of a Product.
// Interval fields are only meaningful when Type is recurring.
type Price struct {
	ID              string            `json:"id"`
	ProductID       string            `json:"product_id"`
	Active          bool              `json:"active"`
	Currency        string            `json:"currency"`
	UnitAmount      *int64            `json:"unit_amount,omitempty"` // minor currency units
	Interval        *string           `json:"interval,omitempty"`    // "month" or "year"
	IntervalCount   *int64            `json:"interval_count,omitempty"`
	TrialPeriodDays *int64            `json:"trial_period_days,omitempty"`
	Type            PriceType         `json:"type"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ========================================
// Subscriptions
// ========================================

// SubscriptionStatus is the Stripe subscription lifecycle status.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
)

// Subscription tracks a user's relationship to one price over time.
// Status transitions are driven entirely by inbound webhook events;
// canceled is terminal but the row is retained.
type Subscription struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	Status             SubscriptionStatus `json:"status"`
	PriceID            *string            `json:"price_id,omitempty"`
	Quantity           int64              `json:"quantity"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	TrialStart         *time.Time         `json:"trial_start,omitempty"`
	TrialEnd           *time.Time         `json:"trial_end,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// ========================================
// AI usage ledger
// ========================================

// AIUsage is one row per successfully answered AI request.
// Rows are immutable once written.
type AIUsage struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Model            string    `json:"model"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	TotalTokens      int64     `json:"total_tokens"`
	UsageDate        string    `json:"usage_date"` // YYYY-MM-DD (UTC calendar day)
	CreatedAt        time.Time `json:"created_at"`
}
