package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			ID           string `json:"id"`
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		PrimaryEmailAddressID string `json:"primary_email_address_id"`
	} `json:"data"`
}

func (e *identityEvent) primaryEmail() string {
	for _, addr := range e.Data.EmailAddresses {
		if addr.ID == e.Data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(e.Data.EmailAddresses) > 0 {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

// IdentityWebhook receives user lifecycle events from the identity
// provider, verified with svix signatures.
func (h *Handlers) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	wh, err := svix.NewWebhook(h.identityWebhookSecret)
	if err != nil {
		h.logger.Error("identity webhook secret misconfigured", "error", err)
		writeError(w, http.StatusInternalServerError, "Webhook handler failed")
		return
	}

	if err := wh.Verify(payload, r.Header); err != nil {
		h.logger.Warn("identity webhook signature verification failed", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	var event identityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	ctx := r.Context()
	switch event.Type {
	case "user.created", "user.updated":
		err = h.services.Identity.UpsertUser(ctx, event.Data.ID, event.primaryEmail())
	case "user.deleted":
		err = h.services.Identity.DeleteUser(ctx, event.Data.ID)
	default:
		h.logger.Debug("ignoring identity event", "type", event.Type)
	}

	if err != nil {
		h.logger.Error("identity webhook handler failed", "type", event.Type, "error", err)
		writeError(w, http.StatusInternalServerError, "Webhook handler failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
