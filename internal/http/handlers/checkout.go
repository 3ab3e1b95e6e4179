package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/launchbase/launchbase-api/internal/http/mw"
	"github.com/launchbase/launchbase-api/internal/service"
)

type checkoutRequest struct {
	PriceID string `json:"priceId"`
}

type sessionResponse struct {
	URL string `json:"url"`
}

// CreateCheckout starts a hosted checkout session and returns its URL.
// Session creation hits the Stripe API, so it sits behind the strict
// rate limit profile.
func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetUserClaims(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.allowStrict(w, r, claims.UserID) {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PriceID == "" {
		writeError(w, http.StatusBadRequest, "Price ID is required")
		return
	}

	url, err := h.services.Billing.CreateCheckoutSession(r.Context(), claims.UserID, claims.Email, req.PriceID)
	if err != nil {
		h.logger.Error("checkout session creation failed", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{URL: url})
}

// CreatePortal returns a billing portal URL for the authenticated user.
func (h *Handlers) CreatePortal(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetUserClaims(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.allowStrict(w, r, claims.UserID) {
		return
	}

	url, err := h.services.Billing.CreatePortalSession(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoBillingAccount) {
			writeError(w, http.StatusBadRequest, "No billing account found")
			return
		}
		h.logger.Error("portal session creation failed", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create portal session")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{URL: url})
}

// allowStrict checks the strict rate limit profile and writes the 429
// response itself when the caller is over.
func (h *Handlers) allowStrict(w http.ResponseWriter, r *http.Request, userID string) bool {
	result, err := h.strictLimiter.Allow(r.Context(), userID, ulid.Make().String())
	if err != nil {
		h.logger.Error("rate limit check failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}

	setRateLimitHeaders(w, result)
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(time.Now())))
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		return false
	}

	return true
}
