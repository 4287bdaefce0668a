package medusa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"suedpfote-storefront/internal/domain"
)

// Client talks to a Medusa-compatible commerce backend. It covers two planes:
// the store API (publishable key, optionally a customer bearer token) and the
// admin API (email/password login yielding a bearer token that is cached).
type Client struct {
	baseURL        string
	publishableKey string
	regionID       string
	httpClient     *http.Client
	logger         *log.Logger

	adminEmail    string
	adminPassword string

	adminMu       sync.Mutex
	adminToken    string
	adminTokenExp time.Time
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	PublishableKey string
	RegionID       string
	AdminEmail     string
	AdminPassword  string
	HTTPClient     *http.Client
	Logger         *log.Logger
}

// New builds a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		publishableKey: opts.PublishableKey,
		regionID:       opts.RegionID,
		httpClient:     httpClient,
		logger:         logger,
		adminEmail:     opts.AdminEmail,
		adminPassword:  opts.AdminPassword,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	token  string // bearer token; empty for key-only store calls
	admin  bool   // admin plane: no publishable key header
}

// do executes req and decodes a 2xx JSON response into out (when non-nil).
// Non-2xx responses become *domain.UpstreamError with the backend's message.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	status, data, err := c.doRaw(ctx, req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &domain.UpstreamError{System: "medusa", Status: status, Message: upstreamMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode medusa response: %w", err)
	}
	return nil
}

// doRaw executes req and returns the raw status and body. Used by the proxy
// route, which passes upstream responses through untouched.
func (c *Client) doRaw(ctx context.Context, req request) (int, []byte, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if !req.admin {
		httpReq.Header.Set("x-publishable-api-key", c.publishableKey)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("medusa %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read medusa response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func upstreamMessage(data []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		s = s[:max]
	}
	return s
}
