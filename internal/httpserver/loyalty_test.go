package httpserver

import (
	"net/http"
	"testing"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/service/loyalty"
)

func TestLoyaltyBalanceRequiresEmail(t *testing.T) {
	router := newTestRouter(t, defaultDeps())
	rec := doJSON(router, http.MethodGet, "/api/loyalty", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoyaltyBalance(t *testing.T) {
	deps := defaultDeps()
	deps.Loyalty = &stubLoyalty{balance: domain.LoyaltyBalance{Points: 1200, Tiers: loyalty.Tiers}}
	router := newTestRouter(t, deps)

	rec := doJSON(router, http.MethodGet, "/api/loyalty?email=lena%40example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["points"] != float64(1200) {
		t.Fatalf("unexpected points %v", body["points"])
	}
	if tiers, ok := body["redemptionTiers"].([]interface{}); !ok || len(tiers) != 4 {
		t.Fatalf("tier table missing: %v", body)
	}
}

func TestLoyaltyAwardAction(t *testing.T) {
	deps := defaultDeps()
	deps.Loyalty = &stubLoyalty{award: loyalty.AwardResult{PointsEarned: 500, NewBalance: 500}}
	router := newTestRouter(t, deps)

	rec := doJSON(router, http.MethodPost, "/api/loyalty", map[string]interface{}{
		"action":     "add",
		"email":      "lena@example.com",
		"orderTotal": 50.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["pointsEarned"] != float64(500) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestLoyaltyRedeemInsufficientCarriesContext(t *testing.T) {
	deps := defaultDeps()
	deps.Loyalty = &stubLoyalty{
		redeemErr: domain.ErrInsufficientPoints,
		balance:   domain.LoyaltyBalance{Points: 1200},
	}
	router := newTestRouter(t, deps)

	rec := doJSON(router, http.MethodPost, "/api/loyalty", map[string]interface{}{
		"action": "redeem",
		"email":  "lena@example.com",
		"tier":   5000,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["required"] != float64(5000) || body["current"] != float64(1200) {
		t.Fatalf("expected required/current in body, got %v", body)
	}
}

func TestLoyaltyUnknownAction(t *testing.T) {
	router := newTestRouter(t, defaultDeps())
	rec := doJSON(router, http.MethodPost, "/api/loyalty", map[string]interface{}{
		"action": "subtract",
		"email":  "lena@example.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
