package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/launchbase/launchbase-api/internal/billing"
	"github.com/launchbase/launchbase-api/internal/service"
)

// Stripe caps event payloads well below this; anything larger is not a
// legitimate webhook delivery.
const maxWebhookBody = 64 * 1024

// StripeWebhook receives Stripe events. The raw body is needed for
// signature verification, so this stays off the OpenAPI layer.
//
// Response contract: 400 means the delivery itself is bad (Stripe will not
// retry a signature failure into success), 500 means we failed to apply a
// valid event and want redelivery, 200 acknowledges.
func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.stripeWebhookSecret)
	if err != nil {
		h.logger.Warn("stripe webhook signature verification failed", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	parsed, err := billing.ParseEvent(event)
	if err != nil {
		h.logger.Error("stripe webhook payload malformed",
			"event_id", event.ID, "type", event.Type, "error", err)
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := h.services.Billing.Apply(r.Context(), parsed); err != nil {
		if errors.Is(err, service.ErrMissingDependency) {
			h.logger.Warn("stripe webhook arrived before its dependency, requesting retry",
				"event_id", event.ID, "type", event.Type, "error", err)
		} else {
			h.logger.Error("stripe webhook handler failed",
				"event_id", event.ID, "type", event.Type, "error", err)
		}
		writeError(w, http.StatusInternalServerError, "Webhook handler failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
