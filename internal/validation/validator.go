package validation

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator with the payment intent cross-field check
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(paymentIntentStructValidation, PaymentIntentRequest{})
	return v
}

// paymentIntentStructValidation verifies Amount equals the item sum plus
// shipping. Comparison happens in cents to dodge float rounding.
func paymentIntentStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(PaymentIntentRequest)

	var sum float64
	for _, it := range req.Items {
		sum += float64(it.Quantity) * it.Price
	}
	sum += req.Shipping

	sumCents := int(math.Round(sum * 100))
	amountCents := int(math.Round(req.Amount * 100))
	if sumCents != amountCents {
		sl.ReportError(req.Amount, "amount", "Amount", "amount_match_items",
			fmt.Sprintf("items sum %.2f != amount %.2f", sum, req.Amount))
	}
}
