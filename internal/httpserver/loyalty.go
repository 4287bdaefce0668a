package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/service/loyalty"
)

func loyaltyBalanceHandler(svc loyaltyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.Query("email"))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "E-Mail erforderlich"})
			return
		}

		balance, err := svc.Balance(c.Request.Context(), email)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Punktestand konnte nicht geladen werden"})
			return
		}
		c.JSON(http.StatusOK, balance)
	}
}

type loyaltyActionRequest struct {
	Action     string  `json:"action" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	OrderTotal float64 `json:"orderTotal"`
	Tier       int64   `json:"tier"`
}

func loyaltyActionHandler(svc loyaltyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loyaltyActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Aktion und E-Mail erforderlich"})
			return
		}

		switch req.Action {
		case "add":
			res, err := svc.Award(c.Request.Context(), req.Email, req.OrderTotal)
			if err != nil {
				c.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, res)

		case "redeem":
			res, err := svc.Redeem(c.Request.Context(), req.Email, req.Tier)
			if err != nil {
				if errors.Is(err, domain.ErrInsufficientPoints) {
					c.JSON(http.StatusBadRequest, insufficientPointsBody(c, svc, req))
					return
				}
				if errors.Is(err, loyalty.ErrInvalidTier) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Unbekannte Prämienstufe"})
					return
				}
				c.JSON(errorStatus(err), gin.H{"error": "Einlösung fehlgeschlagen"})
				return
			}
			c.JSON(http.StatusOK, res)

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unbekannte Aktion"})
		}
	}
}

// insufficientPointsBody enriches the failure with the required and current
// point counts so the UI can show how far the customer is from the tier.
func insufficientPointsBody(c *gin.Context, svc loyaltyService, req loyaltyActionRequest) gin.H {
	body := gin.H{"error": "Nicht genügend Punkte"}
	if tier, ok := loyalty.TierByRef(req.Tier); ok {
		body["required"] = tier.Points
	}
	if balance, err := svc.Balance(c.Request.Context(), req.Email); err == nil {
		body["current"] = balance.Points
	}
	return body
}
