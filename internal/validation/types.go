package validation

// Item is one cart line as the browser reports it when requesting a payment
// intent.
type Item struct {
	VariantID string  `json:"variantId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Price     float64 `json:"price" validate:"required,gt=0"`
}

// PaymentIntentRequest is the payload for POST /api/create-payment-intent.
// Amount is the total the client wants charged; it must equal the item sum
// plus shipping, so a tampered client cannot pick its own price.
type PaymentIntentRequest struct {
	Email    string  `json:"email" validate:"omitempty,email"`
	Items    []Item  `json:"items" validate:"required,min=1,dive"`
	Shipping float64 `json:"shipping" validate:"gte=0"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}
