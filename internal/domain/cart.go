package domain

// Cart is the projection of a backend cart the storefront actually consumes.
// Prices are full-precision currency units, not cents, matching the backend's
// store API.
type Cart struct {
	ID                string             `json:"id"`
	Items             []LineItem         `json:"items"`
	Subtotal          float64            `json:"subtotal"`
	ShippingTotal     float64            `json:"shipping_total"`
	TaxTotal          float64            `json:"tax_total"`
	Total             float64            `json:"total"`
	Email             string             `json:"email,omitempty"`
	PaymentCollection *PaymentCollection `json:"payment_collection,omitempty"`
}

// LineItem is one product variant plus quantity within a cart or order.
type LineItem struct {
	ID        string  `json:"id"`
	VariantID string  `json:"variant_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// Address is the subset of a shipping/billing address the checkout needs.
type Address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address_1"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

// ShippingOption is a backend-provided shipping method for a cart.
type ShippingOption struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// PaymentCollection groups payment sessions for a cart.
type PaymentCollection struct {
	ID       string           `json:"id"`
	Sessions []PaymentSession `json:"payment_sessions,omitempty"`
}

// PaymentSession is one payment attempt within a collection. Data carries
// provider-specific fields; the Stripe plugin puts client_secret there.
type PaymentSession struct {
	ID         string                 `json:"id"`
	ProviderID string                 `json:"provider_id"`
	Data       map[string]interface{} `json:"data"`
}
