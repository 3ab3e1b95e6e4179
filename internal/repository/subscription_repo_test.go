package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/launchbase/launchbase-api/internal/models"
)

func testSubscription(id, userID string) *models.Subscription {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return &models.Subscription{
		ID:                 id,
		UserID:             userID,
		Status:             models.SubscriptionStatusTrialing,
		Quantity:           1,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   start.AddDate(0, 1, 0),
		CreatedAt:          start,
		UpdatedAt:          start,
	}
}

func TestSubscriptionRepository_UpsertRequiresUser(t *testing.T) {
	repos := setupTestRepos(t)

	err := repos.Subscription.Upsert(context.Background(), testSubscription("sub_1", "user_missing"))
	if err == nil {
		t.Fatal("expected foreign key violation, got nil")
	}
	if !IsForeignKeyViolation(err) {
		t.Errorf("expected foreign key violation, got %v", err)
	}
}

func TestSubscriptionRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	InsertTestUser(t, db, "user_1", "alice@example.com")
	InsertTestProduct(t, db, "prod_1", "Pro Plan")
	InsertTestPrice(t, db, "price_1", "prod_1", 2900)

	sub := testSubscription("sub_1", "user_1")
	priceID := "price_1"
	sub.PriceID = &priceID
	trialEnd := sub.CurrentPeriodEnd
	sub.TrialEnd = &trialEnd

	if err := repos.Subscription.Upsert(ctx, sub); err != nil {
		t.Fatalf("failed to upsert subscription: %v", err)
	}

	got, err := repos.Subscription.GetByID(ctx, "sub_1")
	if err != nil {
		t.Fatalf("failed to get subscription: %v", err)
	}
	if got == nil {
		t.Fatal("expected subscription, got nil")
	}
	if got.Status != models.SubscriptionStatusTrialing {
		t.Errorf("expected trialing status, got %s", got.Status)
	}
	if got.PriceID == nil || *got.PriceID != "price_1" {
		t.Errorf("expected price_1, got %v", got.PriceID)
	}
	if got.TrialEnd == nil || !got.TrialEnd.Equal(trialEnd) {
		t.Errorf("expected trial end %v, got %v", trialEnd, got.TrialEnd)
	}
	if !got.CurrentPeriodStart.Equal(sub.CurrentPeriodStart) {
		t.Errorf("expected period start %v, got %v", sub.CurrentPeriodStart, got.CurrentPeriodStart)
	}
}

func TestSubscriptionRepository_UpsertIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	InsertTestUser(t, db, "user_1", "alice@example.com")

	sub := testSubscription("sub_1", "user_1")
	if err := repos.Subscription.Upsert(ctx, sub); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	update := testSubscription("sub_1", "user_1")
	update.Status = models.SubscriptionStatusActive
	update.CreatedAt = sub.CreatedAt.Add(time.Hour)
	update.UpdatedAt = sub.UpdatedAt.Add(time.Hour)
	if err := repos.Subscription.Upsert(ctx, update); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM subscriptions").Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after double apply, got %d", count)
	}

	got, err := repos.Subscription.GetByID(ctx, "sub_1")
	if err != nil {
		t.Fatalf("failed to get subscription: %v", err)
	}
	if got.Status != models.SubscriptionStatusActive {
		t.Errorf("expected active status, got %s", got.Status)
	}
	if !got.CreatedAt.Equal(sub.CreatedAt) {
		t.Errorf("expected created_at preserved as %v, got %v", sub.CreatedAt, got.CreatedAt)
	}
}

func TestSubscriptionRepository_MarkCanceled(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	InsertTestUser(t, db, "user_1", "alice@example.com")
	if err := repos.Subscription.Upsert(ctx, testSubscription("sub_1", "user_1")); err != nil {
		t.Fatalf("failed to upsert subscription: %v", err)
	}

	repo := NewSQLiteSubscriptionRepository(db)
	updatedAt := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return updatedAt }

	canceledAt := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	found, err := repo.MarkCanceled(ctx, "sub_1", canceledAt)
	if err != nil {
		t.Fatalf("failed to mark canceled: %v", err)
	}
	if !found {
		t.Fatal("expected found=true for existing subscription")
	}

	got, err := repo.GetByID(ctx, "sub_1")
	if err != nil {
		t.Fatalf("failed to get subscription: %v", err)
	}
	if got.Status != models.SubscriptionStatusCanceled {
		t.Errorf("expected canceled status, got %s", got.Status)
	}
	if got.CanceledAt == nil || !got.CanceledAt.Equal(canceledAt) {
		t.Errorf("expected canceled_at %v, got %v", canceledAt, got.CanceledAt)
	}
	if !got.UpdatedAt.Equal(updatedAt) {
		t.Errorf("expected updated_at %v, got %v", updatedAt, got.UpdatedAt)
	}
}

func TestSubscriptionRepository_MarkCanceled_Unknown(t *testing.T) {
	repos := setupTestRepos(t)

	found, err := repos.Subscription.MarkCanceled(context.Background(), "sub_missing", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false for unknown subscription")
	}
}

func TestSubscriptionRepository_GetCurrentByUserID(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	InsertTestUser(t, db, "user_1", "alice@example.com")

	// No subscription yet
	got, err := repos.Subscription.GetCurrentByUserID(ctx, "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil without subscriptions, got %+v", got)
	}

	old := testSubscription("sub_old", "user_1")
	old.Status = models.SubscriptionStatusCanceled
	if err := repos.Subscription.Upsert(ctx, old); err != nil {
		t.Fatalf("failed to upsert subscription: %v", err)
	}

	current := testSubscription("sub_new", "user_1")
	current.Status = models.SubscriptionStatusActive
	current.CreatedAt = old.CreatedAt.AddDate(0, 1, 0)
	current.UpdatedAt = current.CreatedAt
	if err := repos.Subscription.Upsert(ctx, current); err != nil {
		t.Fatalf("failed to upsert subscription: %v", err)
	}

	got, err = repos.Subscription.GetCurrentByUserID(ctx, "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected current subscription, got nil")
	}
	if got.ID != "sub_new" {
		t.Errorf("expected sub_new, got %s", got.ID)
	}
}

func TestSubscriptionRepository_NullableColumnsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	InsertTestUser(t, db, "user_1", "alice@example.com")

	sub := testSubscription("sub_1", "user_1")
	if err := repos.Subscription.Upsert(ctx, sub); err != nil {
		t.Fatalf("failed to upsert subscription: %v", err)
	}

	var priceID, canceledAt, trialStart sql.NullString
	err := db.QueryRow("SELECT price_id, canceled_at, trial_start FROM subscriptions WHERE id = 'sub_1'").
		Scan(&priceID, &canceledAt, &trialStart)
	if err != nil {
		t.Fatalf("failed to query row: %v", err)
	}
	if priceID.Valid || canceledAt.Valid || trialStart.Valid {
		t.Errorf("expected NULL optional columns, got price_id=%v canceled_at=%v trial_start=%v",
			priceID, canceledAt, trialStart)
	}
}
