// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Redis (rate limit counters)
	RedisURL string

	// Identity provider
	AuthJWTSecret         string // HS256 signing secret shared with the identity provider
	AuthIssuer            string // expected "iss" claim; empty disables the check
	IdentityWebhookSecret string // Svix signing secret for identity webhooks

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// AI model
	GeminiAPIKey string
	GeminiModel  string

	// Checkout/portal redirect targets
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	PortalReturnURL    string

	// Rate limit profiles
	ChatRateLimit    int
	ChatRateWindow   time.Duration
	StrictRateLimit  int
	StrictRateWindow time.Duration

	// CORS
	CORSOrigins []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:launchbase.db?_journal=WAL&_timeout=5000"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		AuthJWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
		AuthIssuer:            getEnv("AUTH_ISSUER", ""),
		IdentityWebhookSecret: getEnv("IDENTITY_WEBHOOK_SECRET", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		ChatRateLimit:    getEnvInt("CHAT_RATE_LIMIT", 10),
		ChatRateWindow:   getEnvDuration("CHAT_RATE_WINDOW", time.Minute),
		StrictRateLimit:  getEnvInt("STRICT_RATE_LIMIT", 3),
		StrictRateWindow: getEnvDuration("STRICT_RATE_WINDOW", time.Minute),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Redirect targets default to paths on the frontend origin.
	frontend := getEnv("FRONTEND_URL", "http://localhost:3000")
	cfg.CheckoutSuccessURL = getEnv("CHECKOUT_SUCCESS_URL", frontend+"/dashboard?success=true")
	cfg.CheckoutCancelURL = getEnv("CHECKOUT_CANCEL_URL", frontend+"/billing?canceled=true")
	cfg.PortalReturnURL = getEnv("PORTAL_RETURN_URL", frontend+"/billing")

	if cfg.AuthJWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
