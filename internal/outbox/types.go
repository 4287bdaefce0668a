package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job kinds dispatched after a successful checkout.
const (
	KindSendConfirmation = "send_confirmation"
	KindProvisionAccount = "provision_account"
	KindAwardPoints      = "award_points"
	KindCompleteCart     = "complete_cart"
)

// Job statuses.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusDead    = "dead"
)

// Job is one durable side effect. DedupKey makes enqueueing idempotent:
// concurrent completion attempts for the same order collapse into one job.
type Job struct {
	ID        uuid.UUID
	Kind      string
	DedupKey  string
	Payload   json.RawMessage
	Status    string
	Attempts  int
	NextRunAt time.Time
	LastError string
}

// NewJob builds a pending job with a fresh id.
func NewJob(kind, dedupKey string, payload interface{}) (Job, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:        uuid.New(),
		Kind:      kind,
		DedupKey:  dedupKey,
		Payload:   encoded,
		Status:    StatusPending,
		NextRunAt: time.Now().UTC(),
	}, nil
}

// ConfirmationPayload is carried by send_confirmation jobs.
type ConfirmationPayload struct {
	Email     string `json:"email"`
	OrderID   string `json:"order_id"`
	FirstName string `json:"first_name,omitempty"`
}

// ProvisionPayload is carried by provision_account jobs.
type ProvisionPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// AwardPayload is carried by award_points jobs.
type AwardPayload struct {
	Email      string  `json:"email"`
	OrderID    string  `json:"order_id"`
	OrderTotal float64 `json:"order_total"`
}

// CompleteCartPayload is carried by complete_cart recovery jobs, enqueued
// when a paid cart failed to complete inline.
type CompleteCartPayload struct {
	CartID     string  `json:"cart_id"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name,omitempty"`
	LastName   string  `json:"last_name,omitempty"`
	OrderTotal float64 `json:"order_total"`
	Guest      bool    `json:"guest"`
}
