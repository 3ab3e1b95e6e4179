// Package service contains the application's business logic. Services sit
// between the HTTP layer and the repositories; collaborators are passed in
// explicitly so each service can be tested in isolation.
package service

import (
	"log/slog"

	"github.com/launchbase/launchbase-api/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Billing  *BillingService
	Chat     *ChatService
	Usage    *UsageService
	Identity *IdentityService
}

// NewServices wires up all services.
func NewServices(
	repos *repository.Repositories,
	gateway StripeGateway,
	generator Generator,
	urls CheckoutURLs,
	logger *slog.Logger,
) *Services {
	return &Services{
		Billing:  NewBillingService(repos, gateway, urls, logger),
		Chat:     NewChatService(generator, repos.AIUsage, logger),
		Usage:    NewUsageService(repos.AIUsage),
		Identity: NewIdentityService(repos.User, logger),
	}
}
