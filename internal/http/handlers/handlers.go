// Package handlers contains the HTTP handlers.
//
// Webhooks and the chat/billing POST endpoints are plain http.HandlerFunc
// because their wire contracts are fixed by external callers (signature
// verification needs the raw body, and response shapes must match what
// frontends already parse). The read-only GET endpoints go through huma so
// they appear in the generated OpenAPI document.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/launchbase/launchbase-api/internal/ratelimit"
	"github.com/launchbase/launchbase-api/internal/service"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	services *service.Services
	logger   *slog.Logger

	stripeWebhookSecret   string
	identityWebhookSecret string

	chatLimiter   *ratelimit.Limiter
	strictLimiter *ratelimit.Limiter
}

// Config carries the handler dependencies that are not services.
type Config struct {
	StripeWebhookSecret   string
	IdentityWebhookSecret string
	ChatLimiter           *ratelimit.Limiter
	StrictLimiter         *ratelimit.Limiter
}

// New creates the handler set.
func New(services *service.Services, cfg Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		services:              services,
		logger:                logger,
		stripeWebhookSecret:   cfg.StripeWebhookSecret,
		identityWebhookSecret: cfg.IdentityWebhookSecret,
		chatLimiter:           cfg.ChatLimiter,
		strictLimiter:         cfg.StrictLimiter,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a {"error": ...} body with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
