// Package billing translates raw Stripe webhook events into typed domain
// events and applies them to local state.
package billing

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v78"
)

// Event is a typed billing event parsed from a verified Stripe webhook.
// Exactly one concrete variant exists per event family; payloads the router
// does not handle become Unrecognized.
type Event interface {
	EventType() string
}

// ProductUpserted covers product.created and product.updated.
type ProductUpserted struct {
	Type    string
	Product *stripe.Product
}

func (e ProductUpserted) EventType() string { return e.Type }

// PriceUpserted covers price.created and price.updated.
type PriceUpserted struct {
	Type  string
	Price *stripe.Price
}

func (e PriceUpserted) EventType() string { return e.Type }

// SubscriptionChanged covers customer.subscription.created and
// customer.subscription.updated.
type SubscriptionChanged struct {
	Type         string
	Subscription *stripe.Subscription
}

func (e SubscriptionChanged) EventType() string { return e.Type }

// SubscriptionDeleted covers customer.subscription.deleted.
type SubscriptionDeleted struct {
	Subscription *stripe.Subscription
}

func (e SubscriptionDeleted) EventType() string { return "customer.subscription.deleted" }

// CheckoutCompleted covers checkout.session.completed.
type CheckoutCompleted struct {
	Session *stripe.CheckoutSession
}

func (e CheckoutCompleted) EventType() string { return "checkout.session.completed" }

// Unrecognized is any event type the router does not handle. It is
// acknowledged without side effects so Stripe stops redelivering.
type Unrecognized struct {
	Type string
}

func (e Unrecognized) EventType() string { return e.Type }

// ParseEvent maps a verified Stripe event to its typed variant.
// Returns an error only when a recognized event carries a malformed payload.
func ParseEvent(event stripe.Event) (Event, error) {
	switch event.Type {
	case "product.created", "product.updated":
		var product stripe.Product
		if err := json.Unmarshal(event.Data.Raw, &product); err != nil {
			return nil, fmt.Errorf("failed to parse product payload: %w", err)
		}
		return ProductUpserted{Type: string(event.Type), Product: &product}, nil

	case "price.created", "price.updated":
		var price stripe.Price
		if err := json.Unmarshal(event.Data.Raw, &price); err != nil {
			return nil, fmt.Errorf("failed to parse price payload: %w", err)
		}
		return PriceUpserted{Type: string(event.Type), Price: &price}, nil

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to parse subscription payload: %w", err)
		}
		return SubscriptionChanged{Type: string(event.Type), Subscription: &sub}, nil

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to parse subscription payload: %w", err)
		}
		return SubscriptionDeleted{Subscription: &sub}, nil

	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session payload: %w", err)
		}
		return CheckoutCompleted{Session: &session}, nil

	default:
		return Unrecognized{Type: string(event.Type)}, nil
	}
}
