package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-signing-key"

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_1",
			Issuer:    "https://auth.example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: "alice@example.com",
	}
}

func TestVerifier_ValidToken(t *testing.T) {
	v := NewVerifier(testSecret, "https://auth.example.com")

	claims, err := v.Verify(signToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.Subject != "user_1" {
		t.Errorf("expected subject user_1, got %s", claims.Subject)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("expected email, got %s", claims.Email)
	}
}

func TestVerifier_WrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, "")

	_, err := v.Verify(signToken(t, "other-secret", validClaims()))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_ExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret, "")

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := v.Verify(signToken(t, testSecret, claims))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifier_WrongIssuer(t *testing.T) {
	v := NewVerifier(testSecret, "https://auth.example.com")

	claims := validClaims()
	claims.Issuer = "https://evil.example.com"

	if _, err := v.Verify(signToken(t, testSecret, claims)); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestVerifier_MissingSubject(t *testing.T) {
	v := NewVerifier(testSecret, "")

	claims := validClaims()
	claims.Subject = ""

	_, err := v.Verify(signToken(t, testSecret, claims))
	if !errors.Is(err, ErrMissingClaims) {
		t.Fatalf("expected ErrMissingClaims, got %v", err)
	}
}

func TestVerifier_RejectsUnsignedToken(t *testing.T) {
	v := NewVerifier(testSecret, "")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	if _, err := v.Verify(unsigned); err == nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestVerifier_GarbageInput(t *testing.T) {
	v := NewVerifier(testSecret, "")

	if _, err := v.Verify("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
