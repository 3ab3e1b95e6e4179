package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/launchbase/launchbase-api/internal/ai"
	"github.com/launchbase/launchbase-api/internal/http/mw"
	"github.com/launchbase/launchbase-api/internal/ratelimit"
)

const maxMessageLength = 4000

type chatRequest struct {
	Message string       `json:"message"`
	History []ai.Message `json:"history,omitempty"`
}

type chatResponse struct {
	Response string    `json:"response"`
	Usage    *ai.Usage `json:"usage"`
}

// Chat answers a single chat message for the authenticated user.
// The rate limit is checked before the body is validated, so malformed
// requests still consume a window slot.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetUserClaims(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.chatLimiter.Allow(r.Context(), claims.UserID, ulid.Make().String())
	if err != nil {
		h.logger.Error("rate limit check failed", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setRateLimitHeaders(w, result)
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(time.Now())))
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if len(req.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "Message is too long")
		return
	}

	generated, err := h.services.Chat.Generate(r.Context(), claims.UserID, req.Message, req.History)
	if err != nil {
		h.logger.Error("chat generation failed", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate response")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response: generated.Text,
		Usage:    generated.Usage,
	})
}

func setRateLimitHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.UnixMilli(), 10))
}
