package service

import (
	"context"
	"time"

	"github.com/launchbase/launchbase-api/internal/repository"
)

// UsageService reports aggregated AI usage.
type UsageService struct {
	usage repository.AIUsageRepository

	now func() time.Time
}

// NewUsageService creates a usage service.
func NewUsageService(usage repository.AIUsageRepository) *UsageService {
	return &UsageService{usage: usage, now: time.Now}
}

// GetMonthlySummary aggregates a user's usage for a month ("YYYY-MM").
// An empty month defaults to the current UTC month.
func (s *UsageService) GetMonthlySummary(ctx context.Context, userID, month string) (*repository.AIUsageSummary, error) {
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	return s.usage.GetMonthlySummary(ctx, userID, month)
}
