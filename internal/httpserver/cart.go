package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/service/cart"
)

func createCartHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mirror, err := carts.Create(c.Request.Context())
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Warenkorb konnte nicht angelegt werden"})
			return
		}
		c.JSON(http.StatusOK, mirror)
	}
}

func getCartHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mirror, err := carts.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Warenkorb nicht gefunden"})
				return
			}
			c.JSON(errorStatus(err), gin.H{"error": "Warenkorb konnte nicht geladen werden"})
			return
		}
		c.JSON(http.StatusOK, mirror)
	}
}

func addCartItemHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cart.AddInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige Anfrage"})
			return
		}

		mirror, err := carts.Add(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, mirror)
	}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func updateCartItemHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige Anfrage"})
			return
		}

		mirror, err := carts.UpdateQuantity(c.Request.Context(), c.Param("id"), c.Param("lineID"), req.Quantity)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Menge konnte nicht geändert werden"})
			return
		}
		c.JSON(http.StatusOK, mirror)
	}
}

func removeCartItemHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		mirror, err := carts.Remove(c.Request.Context(), c.Param("id"), c.Param("lineID"))
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Artikel konnte nicht entfernt werden"})
			return
		}
		c.JSON(http.StatusOK, mirror)
	}
}
