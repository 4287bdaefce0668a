package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/service/account"
	"suedpfote-storefront/internal/service/cart"
	"suedpfote-storefront/internal/service/checkout"
	"suedpfote-storefront/internal/service/loyalty"
	"suedpfote-storefront/internal/service/order"
	"suedpfote-storefront/internal/stripe"
	"suedpfote-storefront/internal/validation"
)

type stubAuth struct {
	token       string
	loginErr    error
	customer    domain.Customer
	customerErr error
}

func (s *stubAuth) Login(context.Context, string, string) (string, error) {
	return s.token, s.loginErr
}

func (s *stubAuth) CurrentCustomer(context.Context, string) (domain.Customer, error) {
	return s.customer, s.customerErr
}

type stubCarts struct {
	mirror  cart.Mirror
	err     error
	cleared []string
}

func (s *stubCarts) Create(context.Context) (cart.Mirror, error) { return s.mirror, s.err }
func (s *stubCarts) Get(context.Context, string) (cart.Mirror, error) {
	return s.mirror, s.err
}
func (s *stubCarts) Add(context.Context, string, cart.AddInput) (cart.Mirror, error) {
	return s.mirror, s.err
}
func (s *stubCarts) UpdateQuantity(context.Context, string, string, int) (cart.Mirror, error) {
	return s.mirror, s.err
}
func (s *stubCarts) Remove(context.Context, string, string) (cart.Mirror, error) {
	return s.mirror, s.err
}
func (s *stubCarts) Clear(cartID string) { s.cleared = append(s.cleared, cartID) }

type stubCheckout struct {
	cart       domain.Cart
	addressErr error
	secret     string
	paymentErr error
	result     checkout.CompleteResult
	complErr   error
}

func (s *stubCheckout) SetAddress(context.Context, string, checkout.AddressInput) (domain.Cart, error) {
	return s.cart, s.addressErr
}

func (s *stubCheckout) InitializePayment(context.Context, string) (string, error) {
	return s.secret, s.paymentErr
}

func (s *stubCheckout) Complete(context.Context, string, checkout.CompleteInput) (checkout.CompleteResult, error) {
	return s.result, s.complErr
}

type stubLoyalty struct {
	balance    domain.LoyaltyBalance
	balanceErr error
	award      loyalty.AwardResult
	awardErr   error
	redeem     loyalty.RedeemResult
	redeemErr  error
}

func (s *stubLoyalty) Balance(context.Context, string) (domain.LoyaltyBalance, error) {
	return s.balance, s.balanceErr
}

func (s *stubLoyalty) Award(context.Context, string, float64) (loyalty.AwardResult, error) {
	return s.award, s.awardErr
}

func (s *stubLoyalty) Redeem(context.Context, string, int64) (loyalty.RedeemResult, error) {
	return s.redeem, s.redeemErr
}

type stubOrders struct {
	orders  []domain.Order
	err     error
	link    order.LinkResult
	linkErr error
}

func (s *stubOrders) OrdersForToken(context.Context, string) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrders) LinkGuestOrders(context.Context, string) (order.LinkResult, error) {
	return s.link, s.linkErr
}

type stubAccounts struct {
	created bool
	err     error
	inputs  []account.ProvisionInput
}

func (s *stubAccounts) Provision(_ context.Context, in account.ProvisionInput) (bool, error) {
	s.inputs = append(s.inputs, in)
	return s.created, s.err
}

type stubSearch struct {
	result json.RawMessage
	err    error
}

func (s *stubSearch) Query(context.Context, string) (json.RawMessage, error) {
	return s.result, s.err
}

type stubGateway struct {
	secret string
	err    error
	inputs []stripe.IntentInput
}

func (s *stubGateway) CreatePaymentIntent(_ context.Context, in stripe.IntentInput) (string, error) {
	s.inputs = append(s.inputs, in)
	return s.secret, s.err
}

type stubMailer struct {
	sent []string
	err  error
}

func (s *stubMailer) SendOrderConfirmation(_ context.Context, to, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type stubProxy struct {
	status   int
	body     []byte
	err      error
	lastPath string
}

func (s *stubProxy) Proxy(_ context.Context, _ string, path string, _ url.Values, _ json.RawMessage) (int, []byte, error) {
	s.lastPath = path
	return s.status, s.body, s.err
}

func defaultDeps() Deps {
	return Deps{
		Auth:      &stubAuth{},
		Carts:     &stubCarts{},
		Checkout:  &stubCheckout{},
		Loyalty:   &stubLoyalty{},
		Orders:    &stubOrders{},
		Accounts:  &stubAccounts{},
		Search:    &stubSearch{result: json.RawMessage(`{"products":[],"count":0}`)},
		Payments:  &stubGateway{},
		Mailer:    &stubMailer{},
		Proxy:     &stubProxy{status: http.StatusOK, body: []byte(`{}`)},
		Validator: validation.New(),
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return buildRouter(log.New(io.Discard, "", 0), nil, deps)
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, defaultDeps())
	rec := doJSON(router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	router := newTestRouter(t, defaultDeps())
	rec := doJSON(router, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
