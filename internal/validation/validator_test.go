package validation

import "testing"

func validRequest() PaymentIntentRequest {
	return PaymentIntentRequest{
		Email: "lena@example.com",
		Items: []Item{
			{VariantID: "V1", Quantity: 2, Price: 19.99},
			{VariantID: "V2", Quantity: 1, Price: 2.00},
		},
		Shipping: 2.99,
		Amount:   44.97,
	}
}

func TestValidRequestPasses(t *testing.T) {
	v := New()
	if err := v.Struct(validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAmountMustMatchItemSum(t *testing.T) {
	v := New()
	req := validRequest()
	req.Amount = 50.00
	if err := v.Struct(req); err == nil {
		t.Fatal("expected amount mismatch to fail validation")
	}
}

func TestFreeShippingSumsCorrectly(t *testing.T) {
	v := New()
	req := PaymentIntentRequest{
		Items:  []Item{{VariantID: "V1", Quantity: 1, Price: 39.00}},
		Amount: 39.00,
	}
	if err := v.Struct(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestItemFieldValidation(t *testing.T) {
	v := New()

	req := validRequest()
	req.Items = nil
	if err := v.Struct(req); err == nil {
		t.Fatal("expected missing items to fail")
	}

	req = validRequest()
	req.Items[0].Quantity = 0
	if err := v.Struct(req); err == nil {
		t.Fatal("expected zero quantity to fail")
	}

	req = validRequest()
	req.Email = "not-an-email"
	if err := v.Struct(req); err == nil {
		t.Fatal("expected bad email to fail")
	}
}
