package domain

import "time"

// Order is the projection returned to the account page.
type Order struct {
	ID                string      `json:"id"`
	DisplayID         int         `json:"display_id"`
	CreatedAt         time.Time   `json:"created_at"`
	Total             float64     `json:"total"`
	Status            string      `json:"status"`
	FulfillmentStatus string      `json:"fulfillment_status"`
	PaymentStatus     string      `json:"payment_status"`
	CustomerID        string      `json:"-"`
	Items             []OrderItem `json:"items"`
}

// OrderItem is a line of a completed order.
type OrderItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
