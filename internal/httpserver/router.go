package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/service/account"
	"suedpfote-storefront/internal/service/cart"
	"suedpfote-storefront/internal/service/checkout"
	"suedpfote-storefront/internal/service/loyalty"
	"suedpfote-storefront/internal/service/order"
	"suedpfote-storefront/internal/stripe"
)

type authService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CurrentCustomer(ctx context.Context, token string) (domain.Customer, error)
}

type cartService interface {
	Create(ctx context.Context) (cart.Mirror, error)
	Get(ctx context.Context, cartID string) (cart.Mirror, error)
	Add(ctx context.Context, cartID string, in cart.AddInput) (cart.Mirror, error)
	UpdateQuantity(ctx context.Context, cartID, lineItemID string, quantity int) (cart.Mirror, error)
	Remove(ctx context.Context, cartID, lineItemID string) (cart.Mirror, error)
	Clear(cartID string)
}

type checkoutService interface {
	SetAddress(ctx context.Context, cartID string, in checkout.AddressInput) (domain.Cart, error)
	InitializePayment(ctx context.Context, cartID string) (string, error)
	Complete(ctx context.Context, cartID string, in checkout.CompleteInput) (checkout.CompleteResult, error)
}

type loyaltyService interface {
	Balance(ctx context.Context, email string) (domain.LoyaltyBalance, error)
	Award(ctx context.Context, email string, orderTotal float64) (loyalty.AwardResult, error)
	Redeem(ctx context.Context, email string, tierRef int64) (loyalty.RedeemResult, error)
}

type orderService interface {
	OrdersForToken(ctx context.Context, token string) ([]domain.Order, error)
	LinkGuestOrders(ctx context.Context, email string) (order.LinkResult, error)
}

type accountService interface {
	Provision(ctx context.Context, in account.ProvisionInput) (bool, error)
}

type searchService interface {
	Query(ctx context.Context, q string) (json.RawMessage, error)
}

type paymentGateway interface {
	CreatePaymentIntent(ctx context.Context, in stripe.IntentInput) (string, error)
}

type confirmationMailer interface {
	SendOrderConfirmation(ctx context.Context, to, orderID, firstName string) error
}

type storeProxy interface {
	Proxy(ctx context.Context, method, path string, query url.Values, body json.RawMessage) (int, []byte, error)
}

// Deps carries everything the routes need.
type Deps struct {
	Auth     authService
	Carts    cartService
	Checkout checkoutService
	Loyalty  loyaltyService
	Orders   orderService
	Accounts accountService
	Search   searchService
	Payments paymentGateway
	Mailer   confirmationMailer
	Proxy    storeProxy

	Validator *validatorv10.Validate

	// AdminKeyHash guards /api/admin; empty keeps those routes hidden.
	AdminKeyHash string
	CORSOrigins  []string
}

func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", loginHandler(deps.Auth))
	auth.POST("/logout", logoutHandler())
	auth.GET("/me", meHandler(deps.Auth))
	auth.GET("/orders", authOrdersHandler(deps.Orders))
	auth.POST("/auto-create", autoCreateHandler(deps.Accounts))

	api.GET("/loyalty", loyaltyBalanceHandler(deps.Loyalty))
	api.POST("/loyalty", loyaltyActionHandler(deps.Loyalty))

	api.POST("/cart", createCartHandler(deps.Carts))
	api.GET("/cart/:id", getCartHandler(deps.Carts))
	api.POST("/cart/:id/items", addCartItemHandler(deps.Carts))
	api.POST("/cart/:id/items/:lineID", updateCartItemHandler(deps.Carts))
	api.DELETE("/cart/:id/items/:lineID", removeCartItemHandler(deps.Carts))

	api.POST("/checkout/:id/address", checkoutAddressHandler(deps.Checkout))
	api.POST("/checkout/:id/payment", checkoutPaymentHandler(deps.Checkout))
	api.POST("/checkout/:id/complete", checkoutCompleteHandler(deps.Checkout, deps.Carts))

	api.POST("/create-payment-intent", createPaymentIntentHandler(deps.Payments, deps.Validator))
	api.POST("/order/send-confirmation", sendConfirmationHandler(deps.Mailer))

	api.GET("/search", searchHandler(deps.Search))

	proxy := proxyHandler(deps.Proxy)
	api.GET("/medusa/*path", proxy)
	api.POST("/medusa/*path", proxy)
	api.DELETE("/medusa/*path", proxy)

	admin := api.Group("/admin")
	admin.Use(adminKeyMiddleware(deps.AdminKeyHash))
	admin.POST("/link-orders", linkOrdersHandler(deps.Orders))

	return router
}

// errorStatus maps service errors to HTTP status codes. Upstream failures
// surface as 502 so clients can tell them apart from our own errors.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientPoints):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	}
	if _, ok := domain.AsUpstream(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
