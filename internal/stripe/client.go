package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"suedpfote-storefront/internal/domain"
)

const defaultAPIBase = "https://api.stripe.com"

// Client creates payment intents directly against the gateway, bypassing the
// commerce backend. This is the express/wallet checkout path.
type Client struct {
	apiBase    string
	secretKey  string
	httpClient *http.Client
}

// New builds a Client. apiBase is overridable for tests; empty means the
// public endpoint.
func New(secretKey, apiBase string, httpClient *http.Client) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiBase:    strings.TrimRight(apiBase, "/"),
		secretKey:  secretKey,
		httpClient: httpClient,
	}
}

// IntentInput describes a payment intent to create. Amount is in full
// currency units and converted to cents on the wire.
type IntentInput struct {
	Amount       float64
	Currency     string
	ReceiptEmail string
	Metadata     map[string]string
}

// CreatePaymentIntent creates an intent with automatic payment methods and
// returns its client secret.
func (c *Client) CreatePaymentIntent(ctx context.Context, in IntentInput) (string, error) {
	currency := in.Currency
	if currency == "" {
		currency = "eur"
	}

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", toCents(in.Amount)))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if in.ReceiptEmail != "" {
		form.Set("receipt_email", in.ReceiptEmail)
	}
	for k, v := range in.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.UpstreamError{System: "stripe", Status: resp.StatusCode, Message: errorMessage(data)}
	}

	var intent struct {
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(data, &intent); err != nil {
		return "", fmt.Errorf("decode stripe response: %w", err)
	}
	if intent.ClientSecret == "" {
		return "", fmt.Errorf("stripe returned no client secret")
	}
	return intent.ClientSecret, nil
}

func errorMessage(data []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return "payment gateway error"
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
