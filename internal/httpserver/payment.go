package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"suedpfote-storefront/internal/stripe"
	"suedpfote-storefront/internal/validation"
)

// createPaymentIntentHandler serves the express checkout: the browser gets a
// client secret straight from the gateway, no backend order involved. The
// amount is cross-checked against the items server-side.
func createPaymentIntentHandler(gateway paymentGateway, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validation.PaymentIntentRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		secret, err := gateway.CreatePaymentIntent(c.Request.Context(), stripe.IntentInput{
			Amount:       req.Amount,
			Currency:     "eur",
			ReceiptEmail: req.Email,
			Metadata:     map[string]string{"item_count": strconv.Itoa(len(req.Items))},
		})
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Zahlung konnte nicht vorbereitet werden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
	}
}

type confirmationRequest struct {
	Email     string `json:"email" binding:"required"`
	OrderID   string `json:"orderId" binding:"required"`
	FirstName string `json:"firstName"`
}

func sendConfirmationHandler(mailer confirmationMailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req confirmationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "E-Mail und Bestellnummer erforderlich"})
			return
		}

		if err := mailer.SendOrderConfirmation(c.Request.Context(), req.Email, req.OrderID, req.FirstName); err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Fehler beim Senden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Bestellbestätigung gesendet"})
	}
}
