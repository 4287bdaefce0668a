package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"suedpfote-storefront/internal/domain"
)

// adminKeyMiddleware guards the admin routes with a bcrypt-checked API key.
// With no hash configured the routes answer 404, indistinguishable from not
// existing at all.
func adminKeyMiddleware(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key == "" || bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type linkOrdersRequest struct {
	Email string `json:"email" binding:"required"`
}

func linkOrdersHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req linkOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "E-Mail erforderlich"})
			return
		}

		result, err := orders.LinkGuestOrders(c.Request.Context(), req.Email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Kunde nicht gefunden"})
				return
			}
			c.JSON(errorStatus(err), gin.H{"error": "Verknüpfung fehlgeschlagen"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("%d Bestellung(en) verknüpft", result.Linked),
			"result":  result,
		})
	}
}
