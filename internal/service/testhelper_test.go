package service

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/launchbase/launchbase-api/internal/database/migrations"
	"github.com/launchbase/launchbase-api/internal/repository"
	"github.com/stripe/stripe-go/v78"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestRepos creates repositories over an in-memory migrated database.
func setupTestRepos(t *testing.T) (*repository.Repositories, *sql.DB) {
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

	t.Cleanup(func() {
		_ = db.Close()
	})

	return repository.NewRepositories(db), db
}

// fakeGateway records outbound Stripe calls without hitting the network.
type fakeGateway struct {
	customers int

	lastCustomerParams *stripe.CustomerParams
	lastCheckoutParams *stripe.CheckoutSessionParams
	lastPortalParams   *stripe.BillingPortalSessionParams

	customerErr error
	checkoutErr error
	portalErr   error
}

func (g *fakeGateway) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	if g.customerErr != nil {
		return nil, g.customerErr
	}
	g.customers++
	g.lastCustomerParams = params
	return &stripe.Customer{ID: "cus_fake"}, nil
}

func (g *fakeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	g.lastCheckoutParams = params
	return &stripe.CheckoutSession{ID: "cs_fake", URL: "https://checkout.stripe.com/c/cs_fake"}, nil
}

func (g *fakeGateway) CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	if g.portalErr != nil {
		return nil, g.portalErr
	}
	g.lastPortalParams = params
	return &stripe.BillingPortalSession{ID: "bps_fake", URL: "https://billing.stripe.com/p/session/bps_fake"}, nil
}

func newTestBillingService(t *testing.T) (*BillingService, *repository.Repositories, *fakeGateway) {
	t.Helper()
	repos, _ := setupTestRepos(t)
	gateway := &fakeGateway{}
	svc := NewBillingService(repos, gateway, CheckoutURLs{
		SuccessURL: "https://app.example.com/billing?success=true",
		CancelURL:  "https://app.example.com/billing?canceled=true",
		ReturnURL:  "https://app.example.com/billing",
	}, testLogger())
	return svc, repos, gateway
}
