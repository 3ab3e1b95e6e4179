package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v78"

	"github.com/launchbase/launchbase-api/internal/billing"
	"github.com/launchbase/launchbase-api/internal/models"
	"github.com/launchbase/launchbase-api/internal/repository"
)

var (
	// ErrMissingDependency indicates an event referenced a row that does not
	// exist yet (price before product, subscription before user). The webhook
	// handler surfaces this as a retryable failure so Stripe redelivers once
	// the parent event has landed.
	ErrMissingDependency = errors.New("referenced record does not exist yet")

	// ErrNoBillingAccount indicates the user has no Stripe customer attached.
	ErrNoBillingAccount = errors.New("no billing account found")
)

// StripeGateway abstracts the outbound Stripe calls used by billing flows.
type StripeGateway interface {
	CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

// CheckoutURLs are the redirect targets for hosted billing pages.
type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
	ReturnURL  string
}

// BillingService applies billing events to local state and drives the
// hosted checkout and portal flows.
type BillingService struct {
	users         repository.UserRepository
	products      repository.ProductRepository
	prices        repository.PriceRepository
	subscriptions repository.SubscriptionRepository
	gateway       StripeGateway
	urls          CheckoutURLs
	logger        *slog.Logger

	now func() time.Time
}

// NewBillingService creates a billing service.
func NewBillingService(
	repos *repository.Repositories,
	gateway StripeGateway,
	urls CheckoutURLs,
	logger *slog.Logger,
) *BillingService {
	return &BillingService{
		users:         repos.User,
		products:      repos.Product,
		prices:        repos.Price,
		subscriptions: repos.Subscription,
		gateway:       gateway,
		urls:          urls,
		logger:        logger,
		now:           time.Now,
	}
}

// Apply dispatches a typed billing event to its handler.
// Unrecognized events are acknowledged without side effects.
func (s *BillingService) Apply(ctx context.Context, event billing.Event) error {
	switch e := event.(type) {
	case billing.ProductUpserted:
		return s.UpsertProduct(ctx, e.Product)
	case billing.PriceUpserted:
		return s.UpsertPrice(ctx, e.Price)
	case billing.SubscriptionChanged:
		return s.UpsertSubscription(ctx, e.Subscription)
	case billing.SubscriptionDeleted:
		return s.CancelSubscription(ctx, e.Subscription)
	case billing.CheckoutCompleted:
		return s.CompleteCheckout(ctx, e.Session)
	case billing.Unrecognized:
		s.logger.Debug("ignoring unhandled event type", "type", e.Type)
		return nil
	default:
		return fmt.Errorf("unknown event variant %T", event)
	}
}

// UpsertProduct mirrors a Stripe product into the local catalog.
func (s *BillingService) UpsertProduct(ctx context.Context, p *stripe.Product) error {
	now := s.now().UTC()
	product := &models.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
		Metadata:    p.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Created > 0 {
		product.CreatedAt = time.Unix(p.Created, 0).UTC()
	}

	if err := s.products.Upsert(ctx, product); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}

	s.logger.Info("product synced", "product_id", p.ID, "active", p.Active)
	return nil
}

// UpsertPrice mirrors a Stripe price into the local catalog.
// The parent product must already exist.
func (s *BillingService) UpsertPrice(ctx context.Context, p *stripe.Price) error {
	if p.Product == nil || p.Product.ID == "" {
		return fmt.Errorf("price %s has no product reference", p.ID)
	}

	price := &models.Price{
		ID:        p.ID,
		ProductID: p.Product.ID,
		Active:    p.Active,
		Currency:  string(p.Currency),
		Type:      models.PriceType(p.Type),
		Metadata:  p.Metadata,
		CreatedAt: s.now().UTC(),
	}
	if p.Created > 0 {
		price.CreatedAt = time.Unix(p.Created, 0).UTC()
	}
	// Stored verbatim: a zero amount is a real price (free tier), not an
	// absent one.
	amount := p.UnitAmount
	price.UnitAmount = &amount
	if p.Recurring != nil {
		interval := string(p.Recurring.Interval)
		price.Interval = &interval
		count := p.Recurring.IntervalCount
		price.IntervalCount = &count
		if p.Recurring.TrialPeriodDays > 0 {
			days := p.Recurring.TrialPeriodDays
			price.TrialPeriodDays = &days
		}
	}

	if err := s.prices.Upsert(ctx, price); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: product %s for price %s", ErrMissingDependency, p.Product.ID, p.ID)
		}
		return fmt.Errorf("failed to upsert price %s: %w", p.ID, err)
	}

	s.logger.Info("price synced", "price_id", p.ID, "product_id", p.Product.ID)
	return nil
}

// UpsertSubscription mirrors a Stripe subscription keyed on the user ID
// carried in the subscription metadata. Events without a userId are logged
// and acknowledged; there is nothing to retry.
func (s *BillingService) UpsertSubscription(ctx context.Context, sub *stripe.Subscription) error {
	userID := sub.Metadata["userId"]
	if userID == "" {
		s.logger.Warn("subscription event missing userId metadata, skipping",
			"subscription_id", sub.ID)
		return nil
	}

	record := s.mapSubscription(sub, userID)
	if err := s.subscriptions.Upsert(ctx, record); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s for subscription %s", ErrMissingDependency, userID, sub.ID)
		}
		return fmt.Errorf("failed to upsert subscription %s: %w", sub.ID, err)
	}

	s.logger.Info("subscription synced",
		"subscription_id", sub.ID, "user_id", userID, "status", sub.Status)
	return nil
}

// CancelSubscription marks a subscription canceled. Unknown subscription IDs
// are a no-op: there is no local state to transition.
func (s *BillingService) CancelSubscription(ctx context.Context, sub *stripe.Subscription) error {
	canceledAt := s.now().UTC()
	if sub.CanceledAt > 0 {
		canceledAt = time.Unix(sub.CanceledAt, 0).UTC()
	}

	found, err := s.subscriptions.MarkCanceled(ctx, sub.ID, canceledAt)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription %s: %w", sub.ID, err)
	}
	if !found {
		s.logger.Warn("cancel event for unknown subscription, skipping", "subscription_id", sub.ID)
		return nil
	}

	s.logger.Info("subscription canceled", "subscription_id", sub.ID)
	return nil
}

// CompleteCheckout attaches the Stripe customer created during checkout to
// the local user record.
func (s *BillingService) CompleteCheckout(ctx context.Context, session *stripe.CheckoutSession) error {
	userID := session.ClientReferenceID
	if userID == "" {
		userID = session.Metadata["userId"]
	}
	if userID == "" {
		s.logger.Warn("checkout session missing user reference, skipping", "session_id", session.ID)
		return nil
	}
	if session.Customer == nil || session.Customer.ID == "" {
		s.logger.Warn("checkout session has no customer, skipping", "session_id", session.ID)
		return nil
	}

	found, err := s.users.SetStripeCustomerID(ctx, userID, session.Customer.ID)
	if err != nil {
		return fmt.Errorf("failed to attach customer to user %s: %w", userID, err)
	}
	if !found {
		s.logger.Warn("checkout completed for unknown user, skipping",
			"user_id", userID, "session_id", session.ID)
		return nil
	}

	s.logger.Info("checkout completed",
		"user_id", userID, "customer_id", session.Customer.ID)
	return nil
}

// CreateCheckoutSession starts a hosted subscription checkout for a user
// and returns the redirect URL. The Stripe customer is created lazily on
// first checkout.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID, email, priceID string) (string, error) {
	customerID, err := s.ensureCustomer(ctx, userID, email)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.urls.SuccessURL),
		CancelURL:         stripe.String(s.urls.CancelURL),
		ClientReferenceID: stripe.String(userID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"userId": userID},
		},
	}
	params.AddMetadata("userId", userID)

	session, err := s.gateway.CreateCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("checkout session created", "user_id", userID, "price_id", priceID)
	return session.URL, nil
}

// CreatePortalSession returns a billing portal URL for an existing customer.
func (s *BillingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user == nil || user.StripeCustomerID == nil {
		return "", ErrNoBillingAccount
	}

	session, err := s.gateway.CreatePortalSession(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*user.StripeCustomerID),
		ReturnURL: stripe.String(s.urls.ReturnURL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	return session.URL, nil
}

// GetCurrentSubscription returns the user's newest non-canceled
// subscription, or nil.
func (s *BillingService) GetCurrentSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return s.subscriptions.GetCurrentByUserID(ctx, userID)
}

// Plan is an active product with its purchasable prices.
type Plan struct {
	Product *models.Product `json:"product"`
	Prices  []*models.Price `json:"prices"`
}

// ListPlans returns the active catalog for pricing pages.
func (s *BillingService) ListPlans(ctx context.Context) ([]Plan, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	plans := make([]Plan, 0, len(products))
	for _, product := range products {
		prices, err := s.prices.ListActiveByProduct(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list prices for %s: %w", product.ID, err)
		}
		plans = append(plans, Plan{Product: product, Prices: prices})
	}

	return plans, nil
}

// ensureCustomer returns the user's Stripe customer ID, creating the
// customer (and a local user row if the identity webhook has not arrived
// yet) when absent.
func (s *BillingService) ensureCustomer(ctx context.Context, userID, email string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	if user == nil {
		now := s.now().UTC()
		user = &models.User{ID: userID, Email: email, CreatedAt: now, UpdatedAt: now}
		if err := s.users.Upsert(ctx, user); err != nil {
			return "", fmt.Errorf("failed to create user %s: %w", userID, err)
		}
	}

	if user.StripeCustomerID != nil {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.AddMetadata("userId", userID)

	customer, err := s.gateway.CreateCustomer(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	if _, err := s.users.SetStripeCustomerID(ctx, userID, customer.ID); err != nil {
		return "", fmt.Errorf("failed to save customer id: %w", err)
	}

	s.logger.Info("stripe customer created", "user_id", userID, "customer_id", customer.ID)
	return customer.ID, nil
}

func (s *BillingService) mapSubscription(sub *stripe.Subscription, userID string) *models.Subscription {
	now := s.now().UTC()
	record := &models.Subscription{
		ID:                 sub.ID,
		UserID:             userID,
		Status:             models.SubscriptionStatus(sub.Status),
		Quantity:           1,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if sub.Created > 0 {
		record.CreatedAt = time.Unix(sub.Created, 0).UTC()
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			priceID := item.Price.ID
			record.PriceID = &priceID
		}
		if item.Quantity > 0 {
			record.Quantity = item.Quantity
		}
	}

	record.CanceledAt = unixTimePtr(sub.CanceledAt)
	record.TrialStart = unixTimePtr(sub.TrialStart)
	record.TrialEnd = unixTimePtr(sub.TrialEnd)

	return record
}

func unixTimePtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
