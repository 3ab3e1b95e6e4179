package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

func signedIdentityRequest(t *testing.T, payload string) *http.Request {
	t.Helper()

	wh, err := svix.NewWebhook(testIdentitySecret)
	if err != nil {
		t.Fatalf("failed to create webhook signer: %v", err)
	}

	msgID := "msg_test"
	timestamp := time.Now()
	signature, err := wh.Sign(msgID, timestamp, []byte(payload))
	if err != nil {
		t.Fatalf("failed to sign payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", bytes.NewReader([]byte(payload)))
	req.Header.Set("svix-id", msgID)
	req.Header.Set("svix-timestamp", fmt.Sprintf("%d", timestamp.Unix()))
	req.Header.Set("svix-signature", signature)
	return req
}

func TestIdentityWebhook_InvalidSignature(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity",
		bytes.NewReader([]byte(`{"type":"user.created","data":{"id":"user_1"}}`)))
	req.Header.Set("svix-id", "msg_test")
	req.Header.Set("svix-timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("svix-signature", "v1,bm90LWEtcmVhbC1zaWduYXR1cmU=")

	rec := httptest.NewRecorder()
	env.handlers.IdentityWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestIdentityWebhook_UserCreated(t *testing.T) {
	env := setupTestEnv(t)

	payload := `{
		"type": "user.created",
		"data": {
			"id": "user_1",
			"primary_email_address_id": "em_2",
			"email_addresses": [
				{"id": "em_1", "email_address": "old@example.com"},
				{"id": "em_2", "email_address": "alice@example.com"}
			]
		}
	}`

	req := signedIdentityRequest(t, payload)
	rec := httptest.NewRecorder()
	env.handlers.IdentityWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, err := env.repos.User.GetByID(req.Context(), "user_1")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user created")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected primary email, got %s", user.Email)
	}
}

func TestIdentityWebhook_UserDeleted(t *testing.T) {
	env := setupTestEnv(t)
	insertUser(t, env.db, "user_1", "alice@example.com")

	req := signedIdentityRequest(t, `{"type":"user.deleted","data":{"id":"user_1"}}`)
	rec := httptest.NewRecorder()
	env.handlers.IdentityWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, err := env.repos.User.GetByID(req.Context(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected user removed, got %+v", user)
	}
}

func TestIdentityWebhook_UnknownTypeIsAcked(t *testing.T) {
	env := setupTestEnv(t)

	req := signedIdentityRequest(t, `{"type":"session.created","data":{"id":"sess_1"}}`)
	rec := httptest.NewRecorder()
	env.handlers.IdentityWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unhandled type, got %d", rec.Code)
	}
}
