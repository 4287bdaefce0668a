package search

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Result caps and the minimum query length the suggest box fires at.
const (
	MinQueryLength = 2
	ResultLimit    = 8
	defaultTimeout = 8 * time.Second
)

type backend interface {
	SearchProducts(ctx context.Context, q string, limit int) (json.RawMessage, error)
}

// Service runs the search-as-you-type product lookup. Results pass through
// untouched; the backend owns the product shape.
type Service struct {
	backend backend
	timeout time.Duration
}

// New creates a Service. timeout bounds each backend call; zero picks the
// default.
func New(b backend, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{backend: b, timeout: timeout}
}

// Query searches products. Queries shorter than the minimum return an empty
// result set without touching the backend.
func (s *Service) Query(ctx context.Context, q string) (json.RawMessage, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < MinQueryLength {
		return json.RawMessage(`{"products":[],"count":0}`), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.backend.SearchProducts(ctx, q, ResultLimit)
}
