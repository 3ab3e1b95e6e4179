// Package main is the entry point for the launchbase-api server.
// Authentication is delegated to the identity provider (JWT bearer tokens),
// billing state is synchronized from Stripe webhooks.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/launchbase/launchbase-api/internal/ai"
	"github.com/launchbase/launchbase-api/internal/auth"
	"github.com/launchbase/launchbase-api/internal/billing"
	"github.com/launchbase/launchbase-api/internal/config"
	"github.com/launchbase/launchbase-api/internal/database"
	"github.com/launchbase/launchbase-api/internal/http/handlers"
	"github.com/launchbase/launchbase-api/internal/http/mw"
	"github.com/launchbase/launchbase-api/internal/logging"
	"github.com/launchbase/launchbase-api/internal/ratelimit"
	"github.com/launchbase/launchbase-api/internal/repository"
	"github.com/launchbase/launchbase-api/internal/service"
	"github.com/launchbase/launchbase-api/internal/version"
)

func main() {
	// Local development convenience; the file is absent in production.
	_ = godotenv.Load()

	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting launchbase-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Redis backs the sliding window rate limiters
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer func() { _ = rdb.Close() }()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		pingCancel()
		os.Exit(1)
	}
	pingCancel()

	chatLimiter := ratelimit.NewLimiter(rdb, ratelimit.Profile{
		Name:   "ai",
		Limit:  cfg.ChatRateLimit,
		Window: cfg.ChatRateWindow,
	})
	strictLimiter := ratelimit.NewLimiter(rdb, ratelimit.Profile{
		Name:   "strict",
		Limit:  cfg.StrictRateLimit,
		Window: cfg.StrictRateWindow,
	})

	// Stripe API client for outbound calls (checkout, portal, customers)
	stripeClient := &client.API{}
	stripeClient.Init(cfg.StripeSecretKey, nil)
	gateway := billing.NewStripeGateway(stripeClient)

	generator := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	services := service.NewServices(repos, gateway, generator, service.CheckoutURLs{
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
		ReturnURL:  cfg.PortalReturnURL,
	}, logger)

	verifier := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthIssuer)

	h := handlers.New(services, handlers.Config{
		StripeWebhookSecret:   cfg.StripeWebhookSecret,
		IdentityWebhookSecret: cfg.IdentityWebhookSecret,
		ChatLimiter:           chatLimiter,
		StrictLimiter:         strictLimiter,
	}, logger)

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit - webhook and chat payloads are small
	router.Use(middleware.RequestSize(1 * 1024 * 1024))

	// Global rate limit by IP (fallback for unauthenticated requests)
	// Authenticated users get per-user sliding window limits
	router.Use(httprate.LimitByIP(100, time.Minute))

	// Global concurrency throttle
	router.Use(middleware.Throttle(100))

	humaConfig := huma.DefaultConfig("LaunchBase API", v.Version)
	humaConfig.Info.Description = "SaaS starter backend: Stripe-synchronized billing, AI chat with per-user rate limits, and usage reporting."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:        "http",
			Scheme:      "bearer",
			Description: "Identity provider access token.",
		},
	}

	// Public API with OpenAPI docs
	api := humachi.New(router, humaConfig)
	h.RegisterPublic(api)

	// Webhooks (signature verified by handler, not user auth)
	router.Post("/api/v1/webhooks/stripe", h.StripeWebhook)
	if cfg.IdentityWebhookSecret != "" {
		router.Post("/api/v1/webhooks/identity", h.IdentityWebhook)
		logger.Info("identity webhook endpoint enabled")
	}

	// Protected routes (no separate docs - served by the main API)
	protectedConfig := huma.DefaultConfig("LaunchBase API", v.Version)
	protectedConfig.Servers = humaConfig.Servers
	protectedConfig.DocsPath = ""
	protectedConfig.OpenAPIPath = ""
	protectedConfig.SchemasPath = ""

	router.Group(func(r chi.Router) {
		r.Use(mw.Auth(verifier))

		protectedAPI := humachi.New(r, protectedConfig)
		h.RegisterProtected(protectedAPI)

		r.Post("/api/v1/ai/chat", h.Chat)
		r.Post("/api/v1/billing/checkout", h.CreateCheckout)
		r.Post("/api/v1/billing/portal", h.CreatePortal)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		<-sigChan

		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
