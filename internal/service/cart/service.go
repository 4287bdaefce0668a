package cart

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"suedpfote-storefront/internal/domain"
)

type backend interface {
	CreateCart(ctx context.Context) (domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (domain.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (domain.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (domain.Cart, error)
	RemoveLineItem(ctx context.Context, cartID, lineItemID string) (domain.Cart, error)
}

// Mirror is the server-held view of a cart: mutated optimistically so the
// storefront never blocks on the backend, then reconciled against the
// backend's authoritative state. Desynced is set instead of hiding a failed
// sync.
type Mirror struct {
	CartID   string            `json:"cartId"`
	Items    []domain.LineItem `json:"items"`
	Desynced bool              `json:"desynced"`
}

// TotalItems sums the quantities.
func (m Mirror) TotalItems() int {
	total := 0
	for _, item := range m.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums price times quantity over all lines.
func (m Mirror) TotalPrice() float64 {
	total := 0.0
	for _, item := range m.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// AddInput describes an item added from a product page.
type AddInput struct {
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// Service keeps a bounded cache of cart mirrors keyed by backend cart id.
type Service struct {
	backend backend
	logger  *log.Logger

	mu      sync.Mutex
	mirrors *lru.Cache[string, Mirror]
}

// New creates a Service caching up to size mirrors.
func New(b backend, logger *log.Logger, size int) (*Service, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, Mirror](size)
	if err != nil {
		return nil, err
	}
	return &Service{backend: b, logger: logger, mirrors: cache}, nil
}

// Create makes a backend cart and an empty mirror for it.
func (s *Service) Create(ctx context.Context) (Mirror, error) {
	cart, err := s.backend.CreateCart(ctx)
	if err != nil {
		return Mirror{}, err
	}
	mirror := Mirror{CartID: cart.ID, Items: cart.Items}
	s.store(mirror)
	return mirror, nil
}

// Get returns the mirror, refreshed from the backend when reachable. A
// backend failure serves the cached mirror flagged as desynced; an unknown
// cart with no cached mirror is ErrNotFound.
func (s *Service) Get(ctx context.Context, cartID string) (Mirror, error) {
	cart, err := s.backend.GetCart(ctx, cartID)
	if err == nil {
		mirror := Mirror{CartID: cart.ID, Items: cart.Items}
		s.store(mirror)
		return mirror, nil
	}

	cached, ok := s.load(cartID)
	if !ok {
		if errors.Is(err, domain.ErrNotFound) {
			return Mirror{}, domain.ErrNotFound
		}
		return Mirror{}, err
	}
	if !errors.Is(err, domain.ErrNotFound) {
		cached.Desynced = true
		s.store(cached)
	}
	return cached, nil
}

// Add applies the item to the mirror first, then syncs with the backend.
// When the sync succeeds the authoritative cart replaces the mirror; when it
// fails the optimistic state stays, flagged as desynced.
func (s *Service) Add(ctx context.Context, cartID string, in AddInput) (Mirror, error) {
	if strings.TrimSpace(in.VariantID) == "" {
		return Mirror{}, errors.New("variantId required")
	}
	if in.Quantity < 1 {
		return Mirror{}, errors.New("quantity must be at least 1")
	}

	mirror, ok := s.load(cartID)
	if !ok {
		mirror = Mirror{CartID: cartID}
	}
	mirror = applyAdd(mirror, in)
	s.store(mirror)

	synced, err := s.backend.AddLineItem(ctx, cartID, in.VariantID, in.Quantity)
	if err != nil {
		s.logger.Printf("cart %s: sync add failed: %v", cartID, err)
		mirror.Desynced = true
		s.store(mirror)
		return mirror, nil
	}

	mirror = Mirror{CartID: synced.ID, Items: synced.Items}
	s.store(mirror)
	return mirror, nil
}

// UpdateQuantity changes a line's quantity; zero or below removes the line.
// Updates against a cart the backend does not know are a no-op returning the
// untouched local state.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, lineItemID string, quantity int) (Mirror, error) {
	if quantity <= 0 {
		return s.Remove(ctx, cartID, lineItemID)
	}

	before, ok := s.load(cartID)
	if !ok {
		before = Mirror{CartID: cartID}
	}

	mirror := applyQuantity(before, lineItemID, quantity)
	s.store(mirror)

	synced, err := s.backend.UpdateLineItem(ctx, cartID, lineItemID, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.store(before)
			return before, nil
		}
		s.logger.Printf("cart %s: sync quantity failed: %v", cartID, err)
		mirror.Desynced = true
		s.store(mirror)
		return mirror, nil
	}

	mirror = Mirror{CartID: synced.ID, Items: synced.Items}
	s.store(mirror)
	return mirror, nil
}

// Remove deletes a line. Removal against an unknown cart is a no-op
// returning the untouched local state.
func (s *Service) Remove(ctx context.Context, cartID, lineItemID string) (Mirror, error) {
	before, ok := s.load(cartID)
	if !ok {
		before = Mirror{CartID: cartID}
	}

	mirror := applyRemove(before, lineItemID)
	s.store(mirror)

	synced, err := s.backend.RemoveLineItem(ctx, cartID, lineItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.store(before)
			return before, nil
		}
		s.logger.Printf("cart %s: sync remove failed: %v", cartID, err)
		mirror.Desynced = true
		s.store(mirror)
		return mirror, nil
	}

	mirror = Mirror{CartID: synced.ID, Items: synced.Items}
	s.store(mirror)
	return mirror, nil
}

// Clear drops the mirror, used after order completion.
func (s *Service) Clear(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrors.Remove(cartID)
}

func applyAdd(mirror Mirror, in AddInput) Mirror {
	items := append([]domain.LineItem(nil), mirror.Items...)
	for i, item := range items {
		if item.VariantID == in.VariantID {
			items[i].Quantity += in.Quantity
			mirror.Items = items
			return mirror
		}
	}
	items = append(items, domain.LineItem{
		ID:        "temp-" + uuid.NewString(),
		VariantID: in.VariantID,
		Title:     in.Name,
		UnitPrice: in.Price,
		Quantity:  in.Quantity,
		Thumbnail: in.Image,
	})
	mirror.Items = items
	return mirror
}

func applyQuantity(mirror Mirror, lineItemID string, quantity int) Mirror {
	items := append([]domain.LineItem(nil), mirror.Items...)
	for i, item := range items {
		if item.ID == lineItemID {
			items[i].Quantity = quantity
		}
	}
	mirror.Items = items
	return mirror
}

func applyRemove(mirror Mirror, lineItemID string) Mirror {
	items := make([]domain.LineItem, 0, len(mirror.Items))
	for _, item := range mirror.Items {
		if item.ID != lineItemID {
			items = append(items, item)
		}
	}
	mirror.Items = items
	return mirror
}

func (s *Service) load(cartID string) (Mirror, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirrors.Get(cartID)
}

func (s *Service) store(mirror Mirror) {
	if mirror.CartID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrors.Add(mirror.CartID, mirror)
}
