package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/launchbase/launchbase-api/internal/http/mw"
	"github.com/launchbase/launchbase-api/internal/models"
	"github.com/launchbase/launchbase-api/internal/repository"
	"github.com/launchbase/launchbase-api/internal/service"
	"github.com/launchbase/launchbase-api/internal/version"
)

// RegisterPublic registers the unauthenticated read-only operations.
func (h *Handlers) RegisterPublic(api huma.API) {
	huma.Get(api, "/api/v1/health", h.HealthCheck)
	huma.Get(api, "/api/v1/plans", h.ListPlans)
}

// RegisterProtected registers operations that sit behind the auth
// middleware. The router group applying mw.Auth is the caller's job.
func (h *Handlers) RegisterProtected(api huma.API) {
	huma.Get(api, "/api/v1/usage", h.GetUsage)
	huma.Get(api, "/api/v1/billing/subscription", h.GetSubscription)
}

// HealthOutput is the health check response.
type HealthOutput struct {
	Body struct {
		Status    string    `json:"status" example:"ok"`
		Version   string    `json:"version"`
		Commit    string    `json:"commit,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}
}

// HealthCheck reports service liveness and build info.
func (h *Handlers) HealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	info := version.Get()

	out := &HealthOutput{}
	out.Body.Status = "ok"
	out.Body.Version = info.Version
	out.Body.Commit = info.Commit
	out.Body.Timestamp = time.Now().UTC()
	return out, nil
}

// PlansOutput is the active catalog response.
type PlansOutput struct {
	Body struct {
		Plans []service.Plan `json:"plans"`
	}
}

// ListPlans returns active products with their prices, for pricing pages.
func (h *Handlers) ListPlans(ctx context.Context, _ *struct{}) (*PlansOutput, error) {
	plans, err := h.services.Billing.ListPlans(ctx)
	if err != nil {
		h.logger.Error("failed to list plans", "error", err)
		return nil, huma.Error500InternalServerError("Failed to list plans")
	}

	out := &PlansOutput{}
	out.Body.Plans = plans
	return out, nil
}

// UsageInput selects the month to aggregate; defaults to the current month.
type UsageInput struct {
	Month string `query:"month" pattern:"^\\d{4}-\\d{2}$" required:"false" doc:"Month to aggregate, YYYY-MM"`
}

// UsageOutput is the aggregated usage response.
type UsageOutput struct {
	Body struct {
		Month string                     `json:"month"`
		Usage *repository.AIUsageSummary `json:"usage"`
	}
}

// GetUsage returns the caller's aggregated AI usage for one month.
func (h *Handlers) GetUsage(ctx context.Context, input *UsageInput) (*UsageOutput, error) {
	claims, ok := mw.GetUserClaims(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	month := input.Month
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	summary, err := h.services.Usage.GetMonthlySummary(ctx, claims.UserID, month)
	if err != nil {
		h.logger.Error("failed to get usage summary", "user_id", claims.UserID, "error", err)
		return nil, huma.Error500InternalServerError("Failed to get usage")
	}

	out := &UsageOutput{}
	out.Body.Month = month
	out.Body.Usage = summary
	return out, nil
}

// SubscriptionOutput is the current subscription response. Subscription is
// null when the user has none.
type SubscriptionOutput struct {
	Body struct {
		Subscription *models.Subscription `json:"subscription"`
	}
}

// GetSubscription returns the caller's newest non-canceled subscription.
func (h *Handlers) GetSubscription(ctx context.Context, _ *struct{}) (*SubscriptionOutput, error) {
	claims, ok := mw.GetUserClaims(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	sub, err := h.services.Billing.GetCurrentSubscription(ctx, claims.UserID)
	if err != nil {
		h.logger.Error("failed to get subscription", "user_id", claims.UserID, "error", err)
		return nil, huma.Error500InternalServerError("Failed to get subscription")
	}

	out := &SubscriptionOutput{}
	out.Body.Subscription = sub
	return out, nil
}
