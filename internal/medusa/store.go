package medusa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"suedpfote-storefront/internal/domain"
)

// Store-plane operations. All of them carry the publishable key.

// CreateCart creates a new cart in the configured region.
func (c *Client) CreateCart(ctx context.Context) (domain.Cart, error) {
	var env cartEnvelope
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts",
		body:   map[string]string{"region_id": c.regionID},
	}, &env)
	if err != nil {
		return domain.Cart{}, err
	}
	return env.Cart.toDomain(), nil
}

// GetCart fetches a cart including its payment collection. A 404 maps to
// domain.ErrNotFound so callers can treat expired carts as absent.
func (c *Client) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	query := url.Values{"fields": {"*payment_collection"}}
	var env cartEnvelope
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/carts/" + cartID,
		query:  query,
	}, &env)
	if err != nil {
		if ue, ok := domain.AsUpstream(err); ok && ue.Status == http.StatusNotFound {
			return domain.Cart{}, domain.ErrNotFound
		}
		return domain.Cart{}, err
	}
	return env.Cart.toDomain(), nil
}

// AddLineItem adds a variant to the cart and returns the authoritative cart.
func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (domain.Cart, error) {
	var env cartEnvelope
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/line-items", cartID),
		body:   map[string]interface{}{"variant_id": variantID, "quantity": quantity},
	}, &env)
	if err != nil {
		return domain.Cart{}, err
	}
	return env.Cart.toDomain(), nil
}

// UpdateLineItem changes a line item's quantity.
func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (domain.Cart, error) {
	var env cartEnvelope
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/line-items/%s", cartID, lineItemID),
		body:   map[string]interface{}{"quantity": quantity},
	}, &env)
	if err != nil {
		return domain.Cart{}, err
	}
	return env.Cart.toDomain(), nil
}

// RemoveLineItem deletes a line item from the cart.
func (c *Client) RemoveLineItem(ctx context.Context, cartID, lineItemID string) (domain.Cart, error) {
	var env struct {
		Parent wireCart `json:"parent"`
	}
	err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/store/carts/%s/line-items/%s", cartID, lineItemID),
	}, &env)
	if err != nil {
		return domain.Cart{}, err
	}
	if env.Parent.ID != "" {
		return env.Parent.toDomain(), nil
	}
	// Some backend versions return no parent cart on delete; refetch.
	return c.GetCart(ctx, cartID)
}

// UpdateCartInput carries the checkout address step payload.
type UpdateCartInput struct {
	Email           string          `json:"email,omitempty"`
	ShippingAddress *domain.Address `json:"shipping_address,omitempty"`
	BillingAddress  *domain.Address `json:"billing_address,omitempty"`
}

// UpdateCart sets email and addresses on the cart.
func (c *Client) UpdateCart(ctx context.Context, cartID string, in UpdateCartInput) (domain.Cart, error) {
	var env cartEnvelope
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/carts/" + cartID,
		body:   in,
	}, &env)
	if err != nil {
		return domain.Cart{}, err
	}
	return env.Cart.toDomain(), nil
}

// ListShippingOptions returns the shipping options available for a cart.
func (c *Client) ListShippingOptions(ctx context.Context, cartID string) ([]domain.ShippingOption, error) {
	var env struct {
		ShippingOptions []domain.ShippingOption `json:"shipping_options"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/shipping-options",
		query:  url.Values{"cart_id": {cartID}},
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.ShippingOptions, nil
}

// AddShippingMethod attaches a shipping option to the cart.
func (c *Client) AddShippingMethod(ctx context.Context, cartID, optionID string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/shipping-methods", cartID),
		body:   map[string]string{"option_id": optionID},
	}, nil)
}

// CreatePaymentCollection creates a payment collection for the cart, reusing
// the cart's existing collection when one is already attached.
func (c *Client) CreatePaymentCollection(ctx context.Context, cartID string) (domain.PaymentCollection, error) {
	if cart, err := c.GetCart(ctx, cartID); err == nil && cart.PaymentCollection != nil && cart.PaymentCollection.ID != "" {
		return *cart.PaymentCollection, nil
	}
	var env collectionEnvelope
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/payment-collections",
		body:   map[string]string{"cart_id": cartID},
	}, &env)
	if err != nil {
		return domain.PaymentCollection{}, err
	}
	return env.PaymentCollection.toDomain(), nil
}

// InitPaymentSession initializes a payment session with the given provider and
// returns the client secret the browser confirms against the gateway.
func (c *Client) InitPaymentSession(ctx context.Context, collectionID, providerID string) (string, error) {
	var env collectionEnvelope
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/payment-collections/%s/payment-sessions", collectionID),
		body:   map[string]string{"provider_id": providerID},
	}, &env)
	if err != nil {
		return "", err
	}
	for _, session := range env.PaymentCollection.Sessions {
		if secret, ok := session.Data["client_secret"].(string); ok && secret != "" {
			return secret, nil
		}
	}
	return "", errors.New("payment session carries no client secret")
}

// CompleteCart materializes an order from the cart and returns its id.
func (c *Client) CompleteCart(ctx context.Context, cartID string) (string, error) {
	var env struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/complete", cartID),
	}, &env)
	if err != nil {
		return "", err
	}
	if env.Order.ID == "" {
		return "", errors.New("cart completion returned no order")
	}
	return env.Order.ID, nil
}

// Register creates an auth identity for email/password login and returns the
// registration token. A duplicate identity maps to domain.ErrAlreadyExists;
// the backend signals it only through status codes and message text.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	var env struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/customer/emailpass/register",
		body:   map[string]string{"email": email, "password": password},
	}, &env)
	if err != nil {
		if ue, ok := domain.AsUpstream(err); ok && isDuplicateIdentity(ue) {
			return "", domain.ErrAlreadyExists
		}
		return "", err
	}
	return env.Token, nil
}

func isDuplicateIdentity(ue *domain.UpstreamError) bool {
	if ue.Status == http.StatusBadRequest || ue.Status == http.StatusUnprocessableEntity {
		return true
	}
	msg := strings.ToLower(ue.Message)
	return strings.Contains(msg, "email") || strings.Contains(msg, "exists") || strings.Contains(msg, "identity")
}

// CreateCustomer creates the customer record linked to a fresh auth identity.
func (c *Client) CreateCustomer(ctx context.Context, token, email, firstName, lastName string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/customers",
		token:  token,
		body:   map[string]string{"email": email, "first_name": firstName, "last_name": lastName},
	}, nil)
}

// Login authenticates a customer and returns the session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var env struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/customer/emailpass",
		body:   map[string]string{"email": email, "password": password},
	}, &env)
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", errors.New("login returned no token")
	}
	return env.Token, nil
}

// CurrentCustomer resolves the customer bound to a session token.
func (c *Client) CurrentCustomer(ctx context.Context, token string) (domain.Customer, error) {
	var env struct {
		Customer wireCustomer `json:"customer"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/customers/me",
		token:  token,
	}, &env)
	if err != nil {
		if ue, ok := domain.AsUpstream(err); ok && (ue.Status == http.StatusUnauthorized || ue.Status == http.StatusNotFound) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, err
	}
	return env.Customer.toDomain(), nil
}

// SearchProducts runs a product text search and returns the backend's JSON
// payload untouched, so the response shape stays in the backend's hands.
func (c *Client) SearchProducts(ctx context.Context, q string, limit int) (json.RawMessage, error) {
	query := url.Values{"q": {q}, "limit": {strconv.Itoa(limit)}}
	status, data, err := c.doRaw(ctx, request{
		method: http.MethodGet,
		path:   "/store/products",
		query:  query,
	})
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &domain.UpstreamError{System: "medusa", Status: status, Message: upstreamMessage(data)}
	}
	return data, nil
}

// Proxy forwards a request to the backend's store API and returns the
// upstream status and body verbatim.
func (c *Client) Proxy(ctx context.Context, method, path string, query url.Values, body json.RawMessage) (int, []byte, error) {
	var payload interface{}
	if len(body) > 0 {
		payload = body
	}
	return c.doRaw(ctx, request{
		method: method,
		path:   "/store/" + strings.TrimLeft(path, "/"),
		query:  query,
		body:   payload,
	})
}
