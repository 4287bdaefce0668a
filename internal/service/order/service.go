package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"suedpfote-storefront/internal/domain"
)

const historyLimit = 50

type backend interface {
	CurrentCustomer(ctx context.Context, token string) (domain.Customer, error)
	FindCustomersByEmail(ctx context.Context, email string) ([]domain.Customer, error)
	ListOrdersByEmail(ctx context.Context, email string, limit int) ([]domain.Order, error)
	SetOrderCustomer(ctx context.Context, orderID, customerID string) error
}

// Service reads order history and repairs the link between guest orders and
// customer records. History is looked up by email rather than customer id:
// guest orders carry no customer id until an admin links them.
type Service struct {
	backend backend
	logger  *log.Logger
}

// New creates a Service.
func New(b backend, logger *log.Logger) *Service {
	return &Service{backend: b, logger: logger}
}

// OrdersForToken lists the newest orders of the session's customer.
func (s *Service) OrdersForToken(ctx context.Context, token string) ([]domain.Order, error) {
	customer, err := s.backend.CurrentCustomer(ctx, token)
	if err != nil {
		return nil, err
	}
	orders, err := s.backend.ListOrdersByEmail(ctx, customer.Email, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// LinkResult reports how many guest orders were attached to the customer.
type LinkResult struct {
	Email   string `json:"email"`
	Linked  int    `json:"linked"`
	Skipped int    `json:"skipped"`
}

// LinkGuestOrders attaches every order placed under the email to the
// customer record, skipping orders already linked. Individual link failures
// are logged and counted as skipped so one broken order does not block the
// rest.
func (s *Service) LinkGuestOrders(ctx context.Context, email string) (LinkResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return LinkResult{}, errors.New("email required")
	}

	matches, err := s.backend.FindCustomersByEmail(ctx, email)
	if err != nil {
		return LinkResult{}, fmt.Errorf("find customer: %w", err)
	}
	if len(matches) == 0 {
		return LinkResult{}, domain.ErrNotFound
	}
	customer := matches[0]

	orders, err := s.backend.ListOrdersByEmail(ctx, email, historyLimit)
	if err != nil {
		return LinkResult{}, fmt.Errorf("list orders: %w", err)
	}

	result := LinkResult{Email: email}
	for _, o := range orders {
		if o.CustomerID == customer.ID {
			result.Skipped++
			continue
		}
		if err := s.backend.SetOrderCustomer(ctx, o.ID, customer.ID); err != nil {
			s.logger.Printf("order %s: link to %s failed: %v", o.ID, customer.ID, err)
			result.Skipped++
			continue
		}
		result.Linked++
	}
	return result, nil
}
