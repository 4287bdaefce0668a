package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"suedpfote-storefront/internal/service/checkout"
)

func checkoutAddressHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.AddressInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige Anfrage"})
			return
		}

		updated, err := svc.SetAddress(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": updated, "shippingCost": checkout.ShippingCost(updated.Subtotal)})
	}
}

func checkoutPaymentHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, err := svc.InitializePayment(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Zahlung konnte nicht initialisiert werden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
	}
}

func checkoutCompleteHandler(svc checkoutService, carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.CompleteInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige Anfrage"})
			return
		}

		cartID := c.Param("id")
		result, err := svc.Complete(c.Request.Context(), cartID, in)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Bestellung konnte nicht abgeschlossen werden"})
			return
		}

		carts.Clear(cartID)
		c.JSON(http.StatusOK, result)
	}
}
