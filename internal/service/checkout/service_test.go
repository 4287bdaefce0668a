package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/medusa"
	"suedpfote-storefront/internal/outbox"
)

type stubBackend struct {
	cart           domain.Cart
	updateErr      error
	updatedWith    medusa.UpdateCartInput
	options        []domain.ShippingOption
	optionsErr     error
	shippingOption string
	shippingErr    error
	collection     domain.PaymentCollection
	collectionErr  error
	sessionSecret  string
	sessionErr     error
	initProvider   string
	initCollection string
	orderID        string
	completeErr    error
	completeCalls  int
}

func (s *stubBackend) GetCart(context.Context, string) (domain.Cart, error) {
	return s.cart, nil
}

func (s *stubBackend) UpdateCart(_ context.Context, _ string, in medusa.UpdateCartInput) (domain.Cart, error) {
	s.updatedWith = in
	return s.cart, s.updateErr
}

func (s *stubBackend) ListShippingOptions(context.Context, string) ([]domain.ShippingOption, error) {
	return s.options, s.optionsErr
}

func (s *stubBackend) AddShippingMethod(_ context.Context, _, optionID string) error {
	s.shippingOption = optionID
	return s.shippingErr
}

func (s *stubBackend) CreatePaymentCollection(context.Context, string) (domain.PaymentCollection, error) {
	return s.collection, s.collectionErr
}

func (s *stubBackend) InitPaymentSession(_ context.Context, collectionID, providerID string) (string, error) {
	s.initCollection = collectionID
	s.initProvider = providerID
	return s.sessionSecret, s.sessionErr
}

func (s *stubBackend) CompleteCart(context.Context, string) (string, error) {
	s.completeCalls++
	return s.orderID, s.completeErr
}

type stubQueue struct {
	jobs       []outbox.Job
	enqueueErr error
	duplicate  bool
}

func (q *stubQueue) Enqueue(_ context.Context, job outbox.Job) (bool, error) {
	if q.enqueueErr != nil {
		return false, q.enqueueErr
	}
	q.jobs = append(q.jobs, job)
	return !q.duplicate, nil
}

func (q *stubQueue) kinds() []string {
	out := make([]string, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, job.Kind)
	}
	return out
}

func newService(backend *stubBackend, queue *stubQueue) *Service {
	return New(backend, queue, log.New(io.Discard, "", 0))
}

func address() domain.Address {
	return domain.Address{
		FirstName:   "Lena",
		LastName:    "Meier",
		Address1:    "Hauptstrasse 1",
		City:        "Berlin",
		PostalCode:  "10115",
		CountryCode: "de",
	}
}

func TestShippingCost(t *testing.T) {
	cases := []struct {
		subtotal float64
		want     float64
	}{
		{subtotal: 39.00, want: 0.00},
		{subtotal: 38.99, want: 2.99},
		{subtotal: 120.00, want: 0.00},
		{subtotal: 0.00, want: 2.99},
	}
	for _, tc := range cases {
		if got := ShippingCost(tc.subtotal); got != tc.want {
			t.Fatalf("ShippingCost(%v) = %v, want %v", tc.subtotal, got, tc.want)
		}
	}
}

func TestSetAddressAttachesFirstShippingOption(t *testing.T) {
	backend := &stubBackend{
		cart: domain.Cart{ID: "cart_1", Total: 42},
		options: []domain.ShippingOption{
			{ID: "so_std", Name: "Standard", Amount: 2.99},
			{ID: "so_exp", Name: "Express", Amount: 7.99},
		},
	}
	svc := newService(backend, &stubQueue{})

	cart, err := svc.SetAddress(context.Background(), "cart_1", AddressInput{Email: "lena@example.com", Address: address()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.ID != "cart_1" {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if backend.shippingOption != "so_std" {
		t.Fatalf("expected first shipping option, got %q", backend.shippingOption)
	}
	if backend.updatedWith.Email != "lena@example.com" {
		t.Fatalf("email not written to cart: %+v", backend.updatedWith)
	}
	if backend.updatedWith.ShippingAddress == nil || backend.updatedWith.BillingAddress == nil {
		t.Fatal("both addresses must be set")
	}
}

func TestSetAddressValidation(t *testing.T) {
	svc := newService(&stubBackend{}, &stubQueue{})
	if _, err := svc.SetAddress(context.Background(), "cart_1", AddressInput{Address: address()}); err == nil {
		t.Fatal("expected error for missing email")
	}
	in := AddressInput{Email: "lena@example.com", Address: domain.Address{City: "Berlin"}}
	if _, err := svc.SetAddress(context.Background(), "cart_1", in); err == nil {
		t.Fatal("expected error for incomplete address")
	}
}

func TestSetAddressNoShippingOptions(t *testing.T) {
	backend := &stubBackend{cart: domain.Cart{ID: "cart_1"}}
	svc := newService(backend, &stubQueue{})
	if _, err := svc.SetAddress(context.Background(), "cart_1", AddressInput{Email: "a@b.de", Address: address()}); err == nil {
		t.Fatal("expected error when backend offers no shipping options")
	}
}

func TestInitializePaymentCreatesStripeSession(t *testing.T) {
	backend := &stubBackend{
		collection:    domain.PaymentCollection{ID: "paycol_1"},
		sessionSecret: "pi_123_secret_abc",
	}
	svc := newService(backend, &stubQueue{})

	secret, err := svc.InitializePayment(context.Background(), "cart_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "pi_123_secret_abc" {
		t.Fatalf("unexpected secret %q", secret)
	}
	if backend.initProvider != ProviderStripe || backend.initCollection != "paycol_1" {
		t.Fatalf("session initialized against %s/%s", backend.initCollection, backend.initProvider)
	}
}

func TestInitializePaymentReusesExistingSession(t *testing.T) {
	backend := &stubBackend{
		collection: domain.PaymentCollection{
			ID: "paycol_1",
			Sessions: []domain.PaymentSession{{
				ID:         "ps_1",
				ProviderID: ProviderStripe,
				Data:       map[string]interface{}{"client_secret": "pi_old_secret"},
			}},
		},
		sessionErr: errors.New("must not be called"),
	}
	svc := newService(backend, &stubQueue{})

	secret, err := svc.InitializePayment(context.Background(), "cart_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "pi_old_secret" {
		t.Fatalf("expected reuse of the existing session, got %q", secret)
	}
}

func TestCompleteEnqueuesFollowUps(t *testing.T) {
	backend := &stubBackend{orderID: "order_1"}
	queue := &stubQueue{}
	svc := newService(backend, queue)

	res, err := svc.Complete(context.Background(), "cart_1", CompleteInput{
		Email:      "lena@example.com",
		FirstName:  "Lena",
		OrderTotal: 54.97,
		Guest:      true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OrderID != "order_1" || res.Pending {
		t.Fatalf("unexpected result %+v", res)
	}

	kinds := queue.kinds()
	if len(kinds) != 3 {
		t.Fatalf("expected confirmation, points and provisioning jobs, got %v", kinds)
	}
	for _, job := range queue.jobs {
		if job.Kind == outbox.KindProvisionAccount {
			continue
		}
		if !strings.HasPrefix(job.DedupKey, "order:order_1:") {
			t.Fatalf("dedup key must carry the order id: %q", job.DedupKey)
		}
	}
}

func TestCompleteRegisteredCustomerSkipsProvisioning(t *testing.T) {
	queue := &stubQueue{}
	svc := newService(&stubBackend{orderID: "order_1"}, queue)

	_, err := svc.Complete(context.Background(), "cart_1", CompleteInput{
		Email:      "lena@example.com",
		OrderTotal: 20,
		Guest:      false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, kind := range queue.kinds() {
		if kind == outbox.KindProvisionAccount {
			t.Fatal("provisioning job enqueued for a registered customer")
		}
	}
}

func TestCompleteFailureSchedulesRecovery(t *testing.T) {
	backend := &stubBackend{completeErr: errors.New("backend timeout")}
	queue := &stubQueue{}
	svc := newService(backend, queue)

	res, err := svc.Complete(context.Background(), "cart_1", CompleteInput{Email: "lena@example.com", OrderTotal: 20})
	if err != nil {
		t.Fatalf("payment already captured, completion must not fail: %v", err)
	}
	if !res.Pending || res.OrderID != "" {
		t.Fatalf("expected pending result, got %+v", res)
	}
	if len(queue.jobs) != 1 || queue.jobs[0].Kind != outbox.KindCompleteCart {
		t.Fatalf("recovery job missing: %v", queue.kinds())
	}
	if queue.jobs[0].DedupKey != "cart:cart_1:complete" {
		t.Fatalf("recovery dedup key %q", queue.jobs[0].DedupKey)
	}
}

func TestCompleteFailureWithDeadQueueErrors(t *testing.T) {
	backend := &stubBackend{completeErr: errors.New("backend timeout")}
	queue := &stubQueue{enqueueErr: errors.New("db down")}
	svc := newService(backend, queue)

	if _, err := svc.Complete(context.Background(), "cart_1", CompleteInput{Email: "a@b.de"}); err == nil {
		t.Fatal("with no recovery job persisted the completion must fail loudly")
	}
}
