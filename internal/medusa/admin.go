package medusa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"suedpfote-storefront/internal/domain"
)

// Admin-plane operations. Privileged calls authenticate with the backend
// admin user and cache the resulting bearer token.

const adminTokenTTL = 10 * time.Minute

// AdminToken logs the configured admin user in, caching the token until it
// nears expiry.
func (c *Client) AdminToken(ctx context.Context) (string, error) {
	c.adminMu.Lock()
	defer c.adminMu.Unlock()

	if c.adminToken != "" && time.Now().Before(c.adminTokenExp) {
		return c.adminToken, nil
	}

	var env struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/user/emailpass",
		body:   map[string]string{"email": c.adminEmail, "password": c.adminPassword},
		admin:  true,
	}, &env)
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}
	if env.Token == "" {
		return "", fmt.Errorf("admin login returned no token")
	}
	c.adminToken = env.Token
	c.adminTokenExp = time.Now().Add(adminTokenTTL)
	return c.adminToken, nil
}

func (c *Client) adminDo(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	token, err := c.AdminToken(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method: method,
		path:   path,
		query:  query,
		body:   body,
		token:  token,
		admin:  true,
	}, out)
}

// FindCustomersByEmail searches customers and returns every record whose
// email matches case-insensitively. The backend may hold duplicates for one
// email; callers decide which record wins.
func (c *Client) FindCustomersByEmail(ctx context.Context, email string) ([]domain.Customer, error) {
	var env struct {
		Customers []wireCustomer `json:"customers"`
	}
	err := c.adminDo(ctx, http.MethodGet, "/admin/customers", url.Values{"q": {email}}, nil, &env)
	if err != nil {
		return nil, err
	}
	var out []domain.Customer
	for _, w := range env.Customers {
		if strings.EqualFold(w.Email, email) {
			out = append(out, w.toDomain())
		}
	}
	return out, nil
}

// AdminCreateCustomer creates a bare customer record (loyalty bookkeeping for
// guests who have no account yet).
func (c *Client) AdminCreateCustomer(ctx context.Context, email string) (domain.Customer, error) {
	var env struct {
		Customer wireCustomer `json:"customer"`
	}
	err := c.adminDo(ctx, http.MethodPost, "/admin/customers", nil, map[string]string{"email": email}, &env)
	if err != nil {
		return domain.Customer{}, err
	}
	return env.Customer.toDomain(), nil
}

// UpdateCustomerMetadata writes the customer's full metadata blob. The
// backend has no partial or atomic metadata update; callers must serialize
// their read-modify-write cycles themselves.
func (c *Client) UpdateCustomerMetadata(ctx context.Context, customerID string, metadata map[string]interface{}) error {
	return c.adminDo(ctx, http.MethodPost, "/admin/customers/"+customerID, nil,
		map[string]interface{}{"metadata": metadata}, nil)
}

// CreatePromotion mints a one-time promotion code granting a fixed amount off
// the order total.
func (c *Client) CreatePromotion(ctx context.Context, code string, amount int64, currency string) error {
	body := map[string]interface{}{
		"code":         code,
		"type":         "standard",
		"is_automatic": false,
		"application_method": map[string]interface{}{
			"type":          "fixed",
			"target_type":   "order",
			"value":         amount,
			"currency_code": currency,
			"allocation":    "total",
		},
		"rules": []interface{}{},
	}
	return c.adminDo(ctx, http.MethodPost, "/admin/promotions", nil, body, nil)
}

// ListOrdersByEmail returns the newest orders matching the email, newest
// first.
func (c *Client) ListOrdersByEmail(ctx context.Context, email string, limit int) ([]domain.Order, error) {
	query := url.Values{
		"q":     {email},
		"limit": {fmt.Sprintf("%d", limit)},
		"order": {"-created_at"},
	}
	var env struct {
		Orders []wireOrder `json:"orders"`
	}
	err := c.adminDo(ctx, http.MethodGet, "/admin/orders", query, nil, &env)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(env.Orders))
	for _, w := range env.Orders {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// SetOrderCustomer links an order to a customer record.
func (c *Client) SetOrderCustomer(ctx context.Context, orderID, customerID string) error {
	return c.adminDo(ctx, http.MethodPost, "/admin/orders/"+orderID, nil,
		map[string]string{"customer_id": customerID}, nil)
}
