package loyalty

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"suedpfote-storefront/internal/domain"
)

// Points configuration.
const (
	PointsPerUnit   = 10
	BoostThreshold  = 100.0
	BoostMultiplier = 2
)

// Tiers is the fixed redemption table: point cost, discount in currency
// units, and the prefix of minted promotion codes.
var Tiers = []domain.RedemptionTier{
	{Points: 5000, Discount: 5, CodePrefix: "LOYAL5"},
	{Points: 10000, Discount: 10, CodePrefix: "LOYAL10"},
	{Points: 25000, Discount: 25, CodePrefix: "LOYAL25"},
	{Points: 50000, Discount: 50, CodePrefix: "LOYAL50"},
}

// ErrInvalidTier is returned when a redemption names no known tier.
var ErrInvalidTier = errors.New("invalid tier")

type backend interface {
	FindCustomersByEmail(ctx context.Context, email string) ([]domain.Customer, error)
	AdminCreateCustomer(ctx context.Context, email string) (domain.Customer, error)
	UpdateCustomerMetadata(ctx context.Context, customerID string, metadata map[string]interface{}) error
	CreatePromotion(ctx context.Context, code string, amount int64, currency string) error
}

// Service owns the loyalty point account kept in the backend's customer
// metadata. The backend offers no atomic counter, so every mutation is a
// read-modify-write serialized behind a per-email lock; cross-order
// deduplication happens upstream via the outbox dedup key.
type Service struct {
	backend backend
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Service.
func New(b backend) *Service {
	return &Service{
		backend: b,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// PointsForTotal computes the points earned for an order total: ten points
// per currency unit, doubled once the total reaches the boost threshold.
func PointsForTotal(total float64) (points int64, boosted bool) {
	base := int64(math.Floor(total * PointsPerUnit))
	if total >= BoostThreshold {
		return base * BoostMultiplier, true
	}
	return base, false
}

// Balance returns the customer's point balance plus the tier table. Unknown
// customers get a zero balance, not an error.
func (s *Service) Balance(ctx context.Context, email string) (domain.LoyaltyBalance, error) {
	matches, err := s.backend.FindCustomersByEmail(ctx, email)
	if err != nil {
		return domain.LoyaltyBalance{}, err
	}
	customer, ok := preferred(matches)
	if !ok {
		return domain.LoyaltyBalance{Tiers: Tiers}, nil
	}
	return domain.LoyaltyBalance{
		Points:        customer.LoyaltyPoints(),
		TotalEarned:   customer.TotalPointsEarned(),
		TotalRedeemed: customer.TotalPointsRedeemed(),
		Tiers:         Tiers,
		CustomerID:    customer.ID,
	}, nil
}

// AwardResult reports a successful point award.
type AwardResult struct {
	PointsEarned int64 `json:"pointsEarned"`
	NewBalance   int64 `json:"newBalance"`
	BoostApplied bool  `json:"boostApplied"`
}

// Award credits points for an order total, creating the customer record when
// none exists yet (guest checkout).
func (s *Service) Award(ctx context.Context, email string, orderTotal float64) (AwardResult, error) {
	if orderTotal <= 0 {
		return AwardResult{}, errors.New("order total required")
	}

	unlock := s.lock(email)
	defer unlock()

	customer, err := s.findOrCreate(ctx, email)
	if err != nil {
		return AwardResult{}, err
	}

	earned, boosted := PointsForTotal(orderTotal)
	current := customer.LoyaltyPoints()
	totalEarned := customer.TotalPointsEarned()

	metadata := cloneMetadata(customer.Metadata)
	metadata["loyalty_points"] = current + earned
	metadata["total_points_earned"] = totalEarned + earned
	metadata["last_points_earned"] = s.now().UTC().Format(time.RFC3339)
	metadata["boost_applied"] = boosted

	if err := s.backend.UpdateCustomerMetadata(ctx, customer.ID, metadata); err != nil {
		return AwardResult{}, fmt.Errorf("update customer points: %w", err)
	}
	return AwardResult{PointsEarned: earned, NewBalance: current + earned, BoostApplied: boosted}, nil
}

// RedeemResult reports a successful redemption.
type RedeemResult struct {
	DiscountCode   string `json:"discountCode"`
	DiscountAmount int64  `json:"discountAmount"`
	PointsSpent    int64  `json:"pointsSpent"`
	NewBalance     int64  `json:"newBalance"`
}

// Redeem trades points for a one-time promotion code. tierRef selects a tier
// either by index or by its point cost. An insufficient balance fails with
// domain.ErrInsufficientPoints and leaves the balance untouched.
func (s *Service) Redeem(ctx context.Context, email string, tierRef int64) (RedeemResult, error) {
	tier, ok := TierByRef(tierRef)
	if !ok {
		return RedeemResult{}, ErrInvalidTier
	}

	unlock := s.lock(email)
	defer unlock()

	matches, err := s.backend.FindCustomersByEmail(ctx, email)
	if err != nil {
		return RedeemResult{}, err
	}
	customer, found := preferred(matches)
	if !found {
		return RedeemResult{}, domain.ErrNotFound
	}

	current := customer.LoyaltyPoints()
	if current < tier.Points {
		return RedeemResult{}, domain.ErrInsufficientPoints
	}

	code := s.mintCode(tier.CodePrefix)
	if err := s.backend.CreatePromotion(ctx, code, tier.Discount, "eur"); err != nil {
		return RedeemResult{}, fmt.Errorf("create discount code: %w", err)
	}

	metadata := cloneMetadata(customer.Metadata)
	metadata["loyalty_points"] = current - tier.Points
	metadata["total_points_redeemed"] = customer.TotalPointsRedeemed() + tier.Points
	metadata["last_redemption"] = s.now().UTC().Format(time.RFC3339)

	if err := s.backend.UpdateCustomerMetadata(ctx, customer.ID, metadata); err != nil {
		return RedeemResult{}, fmt.Errorf("deduct points: %w", err)
	}

	return RedeemResult{
		DiscountCode:   code,
		DiscountAmount: tier.Discount,
		PointsSpent:    tier.Points,
		NewBalance:     current - tier.Points,
	}, nil
}

// TierByRef resolves a tier by list index or by point cost.
func TierByRef(ref int64) (domain.RedemptionTier, bool) {
	for i, tier := range Tiers {
		if int64(i) == ref || tier.Points == ref {
			return tier, true
		}
	}
	return domain.RedemptionTier{}, false
}

func (s *Service) findOrCreate(ctx context.Context, email string) (domain.Customer, error) {
	matches, err := s.backend.FindCustomersByEmail(ctx, email)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer, ok := preferred(matches); ok {
		return customer, nil
	}
	return s.backend.AdminCreateCustomer(ctx, email)
}

// preferred picks the duplicate customer record with the highest balance.
// The backend can hold several records per email; always writing to the
// richest one keeps the balances from forking further.
func preferred(matches []domain.Customer) (domain.Customer, bool) {
	if len(matches) == 0 {
		return domain.Customer{}, false
	}
	best := matches[0]
	for _, c := range matches[1:] {
		if c.LoyaltyPoints() > best.LoyaltyPoints() {
			best = c
		}
	}
	return best, true
}

func (s *Service) mintCode(prefix string) string {
	return prefix + "_" + strings.ToUpper(strconv.FormatInt(s.now().UnixMilli(), 36))
}

func (s *Service) lock(email string) func() {
	key := strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func cloneMetadata(metadata map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata)+4)
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
