package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"testing"

	"suedpfote-storefront/internal/domain"
)

type stubBackend struct {
	createCart domain.Cart
	createErr  error
	getCart    domain.Cart
	getErr     error
	addResult  domain.Cart
	addErr     error
	updResult  domain.Cart
	updErr     error
	delResult  domain.Cart
	delErr     error

	lastAddVariant string
	lastAddQty     int
	lastUpdLine    string
	lastUpdQty     int
	lastDelLine    string
}

func (s *stubBackend) CreateCart(context.Context) (domain.Cart, error) {
	return s.createCart, s.createErr
}

func (s *stubBackend) GetCart(_ context.Context, _ string) (domain.Cart, error) {
	return s.getCart, s.getErr
}

func (s *stubBackend) AddLineItem(_ context.Context, _, variantID string, quantity int) (domain.Cart, error) {
	s.lastAddVariant = variantID
	s.lastAddQty = quantity
	return s.addResult, s.addErr
}

func (s *stubBackend) UpdateLineItem(_ context.Context, _, lineItemID string, quantity int) (domain.Cart, error) {
	s.lastUpdLine = lineItemID
	s.lastUpdQty = quantity
	return s.updResult, s.updErr
}

func (s *stubBackend) RemoveLineItem(_ context.Context, _, lineItemID string) (domain.Cart, error) {
	s.lastDelLine = lineItemID
	return s.delResult, s.delErr
}

func newService(t *testing.T, backend *stubBackend) *Service {
	t.Helper()
	svc, err := New(backend, log.New(io.Discard, "", 0), 16)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func line(id, variant string, price float64, qty int) domain.LineItem {
	return domain.LineItem{ID: id, VariantID: variant, UnitPrice: price, Quantity: qty}
}

func TestAddMergesSameVariantOptimistically(t *testing.T) {
	// Backend down: both adds keep the optimistic state.
	backend := &stubBackend{addErr: errors.New("backend down")}
	svc := newService(t, backend)
	ctx := context.Background()

	first, err := svc.Add(ctx, "cart_1", AddInput{VariantID: "V1", Name: "Scissors", Price: 10.00, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Items) != 1 || first.Items[0].Quantity != 1 {
		t.Fatalf("unexpected mirror %+v", first)
	}
	if !first.Desynced {
		t.Fatal("failed sync must flag the mirror as desynced")
	}

	second, err := svc.Add(ctx, "cart_1", AddInput{VariantID: "V1", Name: "Scissors", Price: 10.00, Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Items) != 1 {
		t.Fatalf("same variant should merge into one line, got %+v", second.Items)
	}
	if second.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", second.Items[0].Quantity)
	}
	if got := second.TotalPrice(); math.Abs(got-30.00) > 1e-9 {
		t.Fatalf("expected subtotal 30.00, got %v", got)
	}
}

func TestAddReplacesMirrorWithAuthoritativeState(t *testing.T) {
	authoritative := domain.Cart{ID: "cart_1", Items: []domain.LineItem{line("li_1", "V1", 10.00, 1)}}
	backend := &stubBackend{addResult: authoritative}
	svc := newService(t, backend)

	mirror, err := svc.Add(context.Background(), "cart_1", AddInput{VariantID: "V1", Name: "Scissors", Price: 10.00, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mirror.Desynced {
		t.Fatal("successful sync must clear desync")
	}
	if len(mirror.Items) != 1 || mirror.Items[0].ID != "li_1" {
		t.Fatalf("mirror not replaced by authoritative cart: %+v", mirror)
	}
	if backend.lastAddVariant != "V1" || backend.lastAddQty != 1 {
		t.Fatalf("backend not called with input: %s/%d", backend.lastAddVariant, backend.lastAddQty)
	}
}

func TestAddValidation(t *testing.T) {
	svc := newService(t, &stubBackend{})
	if _, err := svc.Add(context.Background(), "cart_1", AddInput{VariantID: " ", Quantity: 1}); err == nil {
		t.Fatal("expected variant validation error")
	}
	if _, err := svc.Add(context.Background(), "cart_1", AddInput{VariantID: "V1", Quantity: 0}); err == nil {
		t.Fatal("expected quantity validation error")
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	backend := &stubBackend{
		addErr: errors.New("offline"),
		delErr: errors.New("offline"),
	}
	svc := newService(t, backend)
	ctx := context.Background()

	mirror, _ := svc.Add(ctx, "cart_1", AddInput{VariantID: "V1", Name: "Scissors", Price: 10.00, Quantity: 2})
	lineID := mirror.Items[0].ID

	mirror, err := svc.UpdateQuantity(ctx, "cart_1", lineID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mirror.Items) != 0 {
		t.Fatalf("line must be removed, not kept at quantity <= 0: %+v", mirror.Items)
	}

	// Negative quantities behave the same way.
	mirror, _ = svc.Add(ctx, "cart_1", AddInput{VariantID: "V2", Name: "Pen", Price: 5.00, Quantity: 1})
	mirror, err = svc.UpdateQuantity(ctx, "cart_1", mirror.Items[0].ID, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range mirror.Items {
		if item.Quantity <= 0 {
			t.Fatalf("non-positive quantity survived: %+v", item)
		}
	}
}

func TestUpdateOnUnknownCartIsNoOp(t *testing.T) {
	backend := &stubBackend{updErr: domain.ErrNotFound}
	svc := newService(t, backend)

	mirror, err := svc.UpdateQuantity(context.Background(), "cart_gone", "li_1", 2)
	if err != nil {
		t.Fatalf("no-op expected, got error %v", err)
	}
	if len(mirror.Items) != 0 || mirror.Desynced {
		t.Fatalf("expected untouched empty state, got %+v", mirror)
	}
}

func TestRemoveOnUnknownCartReturnsLocalState(t *testing.T) {
	backend := &stubBackend{addErr: errors.New("offline"), delErr: domain.ErrNotFound}
	svc := newService(t, backend)
	ctx := context.Background()

	before, _ := svc.Add(ctx, "cart_1", AddInput{VariantID: "V1", Name: "Scissors", Price: 10.00, Quantity: 1})

	after, err := svc.Remove(ctx, "cart_1", before.Items[0].ID)
	if err != nil {
		t.Fatalf("no-op expected, got error %v", err)
	}
	if len(after.Items) != 1 {
		t.Fatalf("local state must stay untouched, got %+v", after.Items)
	}
}

func TestTotalsRecomputeAfterEveryMutation(t *testing.T) {
	backend := &stubBackend{addErr: errors.New("offline"), updErr: errors.New("offline"), delErr: errors.New("offline")}
	svc := newService(t, backend)
	ctx := context.Background()

	mirror, _ := svc.Add(ctx, "cart_1", AddInput{VariantID: "V1", Name: "A", Price: 12.50, Quantity: 2})
	mirror, _ = svc.Add(ctx, "cart_1", AddInput{VariantID: "V2", Name: "B", Price: 3.99, Quantity: 3})

	want := 12.50*2 + 3.99*3
	if got := mirror.TotalPrice(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("total %v, want %v", got, want)
	}
	if mirror.TotalItems() != 5 {
		t.Fatalf("total items %d, want 5", mirror.TotalItems())
	}

	var v2Line string
	for _, item := range mirror.Items {
		if item.VariantID == "V2" {
			v2Line = item.ID
		}
	}
	mirror, _ = svc.UpdateQuantity(ctx, "cart_1", v2Line, 1)
	want = 12.50*2 + 3.99
	if got := mirror.TotalPrice(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("total after update %v, want %v", got, want)
	}

	mirror, _ = svc.Remove(ctx, "cart_1", v2Line)
	want = 12.50 * 2
	if got := mirror.TotalPrice(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("total after remove %v, want %v", got, want)
	}
}

func TestGetServesCachedMirrorWhenBackendDown(t *testing.T) {
	backend := &stubBackend{addErr: errors.New("offline"), getErr: errors.New("offline")}
	svc := newService(t, backend)
	ctx := context.Background()

	svc.Add(ctx, "cart_1", AddInput{VariantID: "V1", Name: "A", Price: 10, Quantity: 1})

	mirror, err := svc.Get(ctx, "cart_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mirror.Desynced || len(mirror.Items) != 1 {
		t.Fatalf("expected desynced cached mirror, got %+v", mirror)
	}
}

func TestGetUnknownCart(t *testing.T) {
	backend := &stubBackend{getErr: domain.ErrNotFound}
	svc := newService(t, backend)
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClearDropsMirror(t *testing.T) {
	backend := &stubBackend{addErr: errors.New("offline"), getErr: domain.ErrNotFound}
	svc := newService(t, backend)
	ctx := context.Background()

	svc.Add(ctx, "cart_1", AddInput{VariantID: "V1", Name: "A", Price: 10, Quantity: 1})
	svc.Clear("cart_1")

	if _, err := svc.Get(ctx, "cart_1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
