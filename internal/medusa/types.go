package medusa

import (
	"time"

	"suedpfote-storefront/internal/domain"
)

// Wire envelopes for the subset of backend responses the storefront consumes.

type wireLineItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	VariantID string  `json:"variant_id"`
	Thumbnail string  `json:"thumbnail"`
}

type wireCart struct {
	ID                string                 `json:"id"`
	Items             []wireLineItem         `json:"items"`
	Total             float64                `json:"total"`
	Subtotal          float64                `json:"subtotal"`
	ShippingTotal     float64                `json:"shipping_total"`
	TaxTotal          float64                `json:"tax_total"`
	Email             string                 `json:"email"`
	PaymentCollection *wirePaymentCollection `json:"payment_collection"`
}

type wirePaymentCollection struct {
	ID       string        `json:"id"`
	Sessions []wireSession `json:"payment_sessions"`
}

type wireSession struct {
	ID         string                 `json:"id"`
	ProviderID string                 `json:"provider_id"`
	Data       map[string]interface{} `json:"data"`
}

type cartEnvelope struct {
	Cart wireCart `json:"cart"`
}

type collectionEnvelope struct {
	PaymentCollection wirePaymentCollection `json:"payment_collection"`
}

type wireCustomer struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

type wireOrder struct {
	ID                string          `json:"id"`
	DisplayID         int             `json:"display_id"`
	CreatedAt         time.Time       `json:"created_at"`
	Total             float64         `json:"total"`
	Status            string          `json:"status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	PaymentStatus     string          `json:"payment_status"`
	CustomerID        string          `json:"customer_id"`
	Items             []wireOrderItem `json:"items"`
}

type wireOrderItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func (w wireCart) toDomain() domain.Cart {
	items := make([]domain.LineItem, 0, len(w.Items))
	for _, it := range w.Items {
		items = append(items, domain.LineItem{
			ID:        it.ID,
			VariantID: it.VariantID,
			Title:     it.Title,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Thumbnail: it.Thumbnail,
		})
	}
	cart := domain.Cart{
		ID:            w.ID,
		Items:         items,
		Subtotal:      w.Subtotal,
		ShippingTotal: w.ShippingTotal,
		TaxTotal:      w.TaxTotal,
		Total:         w.Total,
		Email:         w.Email,
	}
	if w.PaymentCollection != nil {
		pc := w.PaymentCollection.toDomain()
		cart.PaymentCollection = &pc
	}
	return cart
}

func (w wirePaymentCollection) toDomain() domain.PaymentCollection {
	sessions := make([]domain.PaymentSession, 0, len(w.Sessions))
	for _, s := range w.Sessions {
		sessions = append(sessions, domain.PaymentSession{ID: s.ID, ProviderID: s.ProviderID, Data: s.Data})
	}
	return domain.PaymentCollection{ID: w.ID, Sessions: sessions}
}

func (w wireCustomer) toDomain() domain.Customer {
	return domain.Customer{
		ID:        w.ID,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Metadata:  w.Metadata,
		CreatedAt: w.CreatedAt,
	}
}

func (w wireOrder) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(w.Items))
	for _, it := range w.Items {
		items = append(items, domain.OrderItem{ID: it.ID, Title: it.Title, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	status := w.FulfillmentStatus
	if status == "" {
		status = "not_fulfilled"
	}
	payment := w.PaymentStatus
	if payment == "" {
		payment = "pending"
	}
	return domain.Order{
		ID:                w.ID,
		DisplayID:         w.DisplayID,
		CreatedAt:         w.CreatedAt,
		Total:             w.Total,
		Status:            w.Status,
		FulfillmentStatus: status,
		PaymentStatus:     payment,
		CustomerID:        w.CustomerID,
		Items:             items,
	}
}
