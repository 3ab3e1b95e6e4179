package handlers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v78"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/launchbase/launchbase-api/internal/ai"
	"github.com/launchbase/launchbase-api/internal/database/migrations"
	"github.com/launchbase/launchbase-api/internal/ratelimit"
	"github.com/launchbase/launchbase-api/internal/repository"
	"github.com/launchbase/launchbase-api/internal/service"
)

const (
	testStripeSecret   = "whsec_test_secret"
	testIdentitySecret = "whsec_C2FVsBQIhrscChlQIMV+b5sSYspob7oD"
)

type fakeGateway struct{}

func (g *fakeGateway) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return &stripe.Customer{ID: "cus_fake"}, nil
}

func (g *fakeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_fake", URL: "https://checkout.stripe.com/c/cs_fake"}, nil
}

func (g *fakeGateway) CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return &stripe.BillingPortalSession{ID: "bps_fake", URL: "https://billing.stripe.com/p/session/bps_fake"}, nil
}

type fakeGenerator struct {
	result *ai.Result
	err    error
}

func (g *fakeGenerator) Generate(ctx context.Context, message string, history []ai.Message) (*ai.Result, error) {
	return g.result, g.err
}

type testEnv struct {
	handlers  *Handlers
	repos     *repository.Repositories
	db        *sql.DB
	generator *fakeGenerator
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repos := repository.NewRepositories(db)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	generator := &fakeGenerator{
		result: &ai.Result{
			Text:  "Hello!",
			Model: "gemini-2.0-flash",
			Usage: &ai.Usage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12},
		},
	}

	services := service.NewServices(repos, &fakeGateway{}, generator, service.CheckoutURLs{
		SuccessURL: "https://app.example.com/billing?success=true",
		CancelURL:  "https://app.example.com/billing?canceled=true",
		ReturnURL:  "https://app.example.com/billing",
	}, logger)

	h := New(services, Config{
		StripeWebhookSecret:   testStripeSecret,
		IdentityWebhookSecret: testIdentitySecret,
		ChatLimiter: ratelimit.NewLimiter(rdb, ratelimit.Profile{
			Name: "ai", Limit: 10, Window: time.Minute,
		}),
		StrictLimiter: ratelimit.NewLimiter(rdb, ratelimit.Profile{
			Name: "strict", Limit: 3, Window: time.Minute,
		}),
	}, logger)

	return &testEnv{handlers: h, repos: repos, db: db, generator: generator}
}

func currentMonth() string {
	return time.Now().UTC().Format("2006-01")
}

func insertUser(t *testing.T, db *sql.DB, id, email string) {
	t.Helper()
	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES (?, ?, datetime('now'), datetime('now'))
	`
	if _, err := db.Exec(query, id, email); err != nil {
		t.Fatalf("failed to insert test user: %v", err)
	}
}
