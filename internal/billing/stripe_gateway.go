package billing

import (
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// StripeGateway wraps the Stripe API client with the narrow surface the
// billing flows need, so services can be tested against a fake.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a gateway backed by the given API client.
func NewStripeGateway(api *client.API) *StripeGateway {
	return &StripeGateway{api: api}
}

// CreateCustomer creates a Stripe customer.
func (g *StripeGateway) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return g.api.Customers.New(params)
}

// CreateCheckoutSession creates a hosted checkout session.
func (g *StripeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return g.api.CheckoutSessions.New(params)
}

// CreatePortalSession creates a billing portal session.
func (g *StripeGateway) CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return g.api.BillingPortalSessions.New(params)
}
