package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"suedpfote-storefront/internal/outbox"
	"suedpfote-storefront/internal/service/account"
	"suedpfote-storefront/internal/service/checkout"
	"suedpfote-storefront/internal/service/loyalty"
)

type confirmationMailer interface {
	SendOrderConfirmation(ctx context.Context, to, orderID, firstName string) error
}

type accountService interface {
	Provision(ctx context.Context, in account.ProvisionInput) (bool, error)
}

type loyaltyService interface {
	Award(ctx context.Context, email string, orderTotal float64) (loyalty.AwardResult, error)
}

type checkoutService interface {
	EnqueueFollowUps(ctx context.Context, orderID string, in checkout.CompleteInput)
}

type cartCompleter interface {
	CompleteCart(ctx context.Context, cartID string) (string, error)
}

// Deps carries the services the job handlers delegate to.
type Deps struct {
	Mailer   confirmationMailer
	Accounts accountService
	Loyalty  loyaltyService
	Checkout checkoutService
	Backend  cartCompleter
	Logger   *log.Logger
}

// Register binds every job kind to its handler.
func Register(d *outbox.Dispatcher, deps Deps) {
	d.Register(outbox.KindSendConfirmation, sendConfirmation(deps))
	d.Register(outbox.KindProvisionAccount, provisionAccount(deps))
	d.Register(outbox.KindAwardPoints, awardPoints(deps))
	d.Register(outbox.KindCompleteCart, completeCart(deps))
}

func sendConfirmation(deps Deps) outbox.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p outbox.ConfirmationPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return deps.Mailer.SendOrderConfirmation(ctx, p.Email, p.OrderID, p.FirstName)
	}
}

func provisionAccount(deps Deps) outbox.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p outbox.ProvisionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		_, err := deps.Accounts.Provision(ctx, account.ProvisionInput{
			Email:     p.Email,
			FirstName: p.FirstName,
			LastName:  p.LastName,
		})
		return err
	}
}

func awardPoints(deps Deps) outbox.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p outbox.AwardPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		_, err := deps.Loyalty.Award(ctx, p.Email, p.OrderTotal)
		return err
	}
}

// completeCart finishes a checkout whose inline completion failed after
// payment. Once the order exists the usual follow-up jobs are scheduled.
func completeCart(deps Deps) outbox.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p outbox.CompleteCartPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}

		orderID, err := deps.Backend.CompleteCart(ctx, p.CartID)
		if err != nil {
			return fmt.Errorf("complete cart %s: %w", p.CartID, err)
		}
		deps.Logger.Printf("recovered order %s from cart %s", orderID, p.CartID)

		deps.Checkout.EnqueueFollowUps(ctx, orderID, checkout.CompleteInput{
			Email:      p.Email,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			OrderTotal: p.OrderTotal,
			Guest:      p.Guest,
		})
		return nil
	}
}
