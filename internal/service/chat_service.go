package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/launchbase/launchbase-api/internal/ai"
	"github.com/launchbase/launchbase-api/internal/models"
	"github.com/launchbase/launchbase-api/internal/repository"
)

// Generator produces chat completions.
type Generator interface {
	Generate(ctx context.Context, message string, history []ai.Message) (*ai.Result, error)
}

// ChatService answers chat requests and records usage.
type ChatService struct {
	generator Generator
	usage     repository.AIUsageRepository
	logger    *slog.Logger

	now func() time.Time
}

// NewChatService creates a chat service.
func NewChatService(generator Generator, usage repository.AIUsageRepository, logger *slog.Logger) *ChatService {
	return &ChatService{
		generator: generator,
		usage:     usage,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate produces a reply and writes a usage ledger row when the provider
// reported token counts. The ledger write is best-effort: a failure there
// must not lose an answer the user already paid a rate limit slot for.
func (s *ChatService) Generate(ctx context.Context, userID, message string, history []ai.Message) (*ai.Result, error) {
	result, err := s.generator.Generate(ctx, message, history)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	s.recordUsage(ctx, userID, result)
	return result, nil
}

func (s *ChatService) recordUsage(ctx context.Context, userID string, result *ai.Result) {
	// No usage metadata means nothing to account for; a zero row would
	// inflate the request count in the monthly summary.
	if result.Usage == nil {
		return
	}

	now := s.now().UTC()
	record := &models.AIUsage{
		ID:               ulid.Make().String(),
		UserID:           userID,
		Model:            result.Model,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
		UsageDate:        now.Format("2006-01-02"),
		CreatedAt:        now,
	}

	if err := s.usage.Create(ctx, record); err != nil {
		s.logger.Error("failed to record ai usage", "user_id", userID, "error", err)
	}
}
