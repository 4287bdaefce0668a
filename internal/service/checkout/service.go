package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/medusa"
	"suedpfote-storefront/internal/outbox"
)

// ProviderStripe is the payment provider id the backend's Stripe plugin
// registers its sessions under.
const ProviderStripe = "pp_stripe_stripe"

// Shipping pricing: orders at or above the threshold ship free.
const (
	FreeShippingThreshold = 39.00
	FlatShippingRate      = 2.99
)

type backend interface {
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	UpdateCart(ctx context.Context, cartID string, in medusa.UpdateCartInput) (domain.Cart, error)
	ListShippingOptions(ctx context.Context, cartID string) ([]domain.ShippingOption, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) error
	CreatePaymentCollection(ctx context.Context, cartID string) (domain.PaymentCollection, error)
	InitPaymentSession(ctx context.Context, collectionID, providerID string) (string, error)
	CompleteCart(ctx context.Context, cartID string) (string, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, job outbox.Job) (bool, error)
}

// Service walks a cart through address, payment and completion. Post-payment
// side effects are not executed inline; they are enqueued as durable jobs so
// a crash between payment and follow-up cannot lose them.
type Service struct {
	backend backend
	jobs    jobQueue
	logger  *log.Logger
}

// New creates a Service.
func New(b backend, jobs jobQueue, logger *log.Logger) *Service {
	return &Service{backend: b, jobs: jobs, logger: logger}
}

// ShippingCost returns the flat rate, waived at the free shipping threshold.
func ShippingCost(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingRate
}

// AddressInput is the checkout address step payload.
type AddressInput struct {
	Email   string         `json:"email"`
	Address domain.Address `json:"address"`
}

// SetAddress writes email and addresses to the cart and attaches the first
// shipping option the backend offers. The storefront sells into one region
// with one shipping method, so there is nothing to choose from.
func (s *Service) SetAddress(ctx context.Context, cartID string, in AddressInput) (domain.Cart, error) {
	if strings.TrimSpace(in.Email) == "" {
		return domain.Cart{}, errors.New("email required")
	}
	if strings.TrimSpace(in.Address.Address1) == "" || strings.TrimSpace(in.Address.PostalCode) == "" {
		return domain.Cart{}, errors.New("address incomplete")
	}

	_, err := s.backend.UpdateCart(ctx, cartID, medusa.UpdateCartInput{
		Email:           in.Email,
		ShippingAddress: &in.Address,
		BillingAddress:  &in.Address,
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("update cart: %w", err)
	}

	options, err := s.backend.ListShippingOptions(ctx, cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list shipping options: %w", err)
	}
	if len(options) == 0 {
		return domain.Cart{}, errors.New("no shipping options for cart")
	}
	if err := s.backend.AddShippingMethod(ctx, cartID, options[0].ID); err != nil {
		return domain.Cart{}, fmt.Errorf("add shipping method: %w", err)
	}

	return s.backend.GetCart(ctx, cartID)
}

// InitializePayment makes sure the cart has a payment collection with a
// Stripe session and returns the client secret the browser confirms with.
func (s *Service) InitializePayment(ctx context.Context, cartID string) (string, error) {
	collection, err := s.backend.CreatePaymentCollection(ctx, cartID)
	if err != nil {
		return "", fmt.Errorf("create payment collection: %w", err)
	}

	for _, session := range collection.Sessions {
		if session.ProviderID == ProviderStripe {
			if secret, ok := session.Data["client_secret"].(string); ok && secret != "" {
				return secret, nil
			}
		}
	}

	secret, err := s.backend.InitPaymentSession(ctx, collection.ID, ProviderStripe)
	if err != nil {
		return "", fmt.Errorf("init payment session: %w", err)
	}
	return secret, nil
}

// CompleteInput carries what Complete needs beyond the cart id: the customer
// identity for follow-up jobs and whether the buyer checked out as a guest.
type CompleteInput struct {
	Email      string  `json:"email"`
	FirstName  string  `json:"firstName,omitempty"`
	LastName   string  `json:"lastName,omitempty"`
	OrderTotal float64 `json:"orderTotal"`
	Guest      bool    `json:"guest"`
}

// CompleteResult reports the completion outcome. Pending means the payment
// went through but the order could not be materialized inline; a recovery job
// will finish the work.
type CompleteResult struct {
	OrderID string `json:"orderId,omitempty"`
	Pending bool   `json:"pending,omitempty"`
}

// Complete turns a paid cart into an order and enqueues the follow-up jobs:
// confirmation email, loyalty points, and account provisioning for guests.
// Each job is deduplicated on the order id, so retried completions of the
// same cart never double any side effect.
func (s *Service) Complete(ctx context.Context, cartID string, in CompleteInput) (CompleteResult, error) {
	if strings.TrimSpace(in.Email) == "" {
		return CompleteResult{}, errors.New("email required")
	}

	orderID, err := s.backend.CompleteCart(ctx, cartID)
	if err != nil {
		// The customer has already been charged. Park a recovery job and
		// report the order as pending rather than failing the checkout.
		s.logger.Printf("cart %s: completion failed, scheduling recovery: %v", cartID, err)
		if qErr := s.enqueue(ctx, outbox.KindCompleteCart, "cart:"+cartID+":complete", outbox.CompleteCartPayload{
			CartID:     cartID,
			Email:      in.Email,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			OrderTotal: in.OrderTotal,
			Guest:      in.Guest,
		}); qErr != nil {
			return CompleteResult{}, fmt.Errorf("complete cart: %w", err)
		}
		return CompleteResult{Pending: true}, nil
	}

	s.EnqueueFollowUps(ctx, orderID, in)
	return CompleteResult{OrderID: orderID}, nil
}

// EnqueueFollowUps schedules the post-order side effects. Failures are logged
// and swallowed: the order exists either way, and each job is independent.
func (s *Service) EnqueueFollowUps(ctx context.Context, orderID string, in CompleteInput) {
	if err := s.enqueue(ctx, outbox.KindSendConfirmation, "order:"+orderID+":confirmation", outbox.ConfirmationPayload{
		Email:     in.Email,
		OrderID:   orderID,
		FirstName: in.FirstName,
	}); err != nil {
		s.logger.Printf("order %s: enqueue confirmation: %v", orderID, err)
	}

	if in.OrderTotal > 0 {
		if err := s.enqueue(ctx, outbox.KindAwardPoints, "order:"+orderID+":points", outbox.AwardPayload{
			Email:      in.Email,
			OrderID:    orderID,
			OrderTotal: in.OrderTotal,
		}); err != nil {
			s.logger.Printf("order %s: enqueue points: %v", orderID, err)
		}
	}

	if in.Guest {
		if err := s.enqueue(ctx, outbox.KindProvisionAccount, "email:"+strings.ToLower(in.Email)+":provision", outbox.ProvisionPayload{
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
		}); err != nil {
			s.logger.Printf("order %s: enqueue provisioning: %v", orderID, err)
		}
	}
}

func (s *Service) enqueue(ctx context.Context, kind, dedupKey string, payload interface{}) error {
	job, err := outbox.NewJob(kind, dedupKey, payload)
	if err != nil {
		return err
	}
	inserted, err := s.jobs.Enqueue(ctx, job)
	if err != nil {
		return err
	}
	if !inserted {
		s.logger.Printf("job %s already enqueued, skipping", dedupKey)
	}
	return nil
}
