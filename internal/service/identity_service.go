package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchbase/launchbase-api/internal/models"
	"github.com/launchbase/launchbase-api/internal/repository"
)

// IdentityService mirrors identity provider lifecycle events into the
// local users table.
type IdentityService struct {
	users  repository.UserRepository
	logger *slog.Logger

	now func() time.Time
}

// NewIdentityService creates an identity service.
func NewIdentityService(users repository.UserRepository, logger *slog.Logger) *IdentityService {
	return &IdentityService{users: users, logger: logger, now: time.Now}
}

// UpsertUser handles user.created and user.updated events.
func (s *IdentityService) UpsertUser(ctx context.Context, id, email string) error {
	now := s.now().UTC()
	user := &models.User{
		ID:        id,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", id, err)
	}

	s.logger.Info("user synced", "user_id", id)
	return nil
}

// DeleteUser handles user.deleted events. Dependent rows cascade.
func (s *IdentityService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}
