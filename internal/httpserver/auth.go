package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"suedpfote-storefront/internal/domain"
	"suedpfote-storefront/internal/service/account"
)

// sessionCookie is the HTTP-only cookie the session token lives in. The
// browser never reads it; every API call sends it back automatically.
const (
	sessionCookie = "medusa_token"
	sessionMaxAge = 7 * 24 * 60 * 60
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "E-Mail und Passwort erforderlich"})
			return
		}

		token, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if ue, ok := domain.AsUpstream(err); ok && ue.Status == http.StatusUnauthorized {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "E-Mail oder Passwort falsch"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login fehlgeschlagen"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, token, sessionMaxAge, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func meHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"customer": nil})
			return
		}

		customer, err := auth.CurrentCustomer(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"customer": nil})
				return
			}
			c.JSON(errorStatus(err), gin.H{"error": "Sitzung konnte nicht geprüft werden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"customer": customer})
	}
}

func authOrdersHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Nicht angemeldet"})
			return
		}

		list, err := orders.OrdersForToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Nicht angemeldet"})
				return
			}
			c.JSON(errorStatus(err), gin.H{"error": "Bestellungen konnten nicht geladen werden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

type autoCreateRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func autoCreateHandler(accounts accountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req autoCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "E-Mail erforderlich"})
			return
		}

		created, err := accounts.Provision(c.Request.Context(), account.ProvisionInput{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Konto konnte nicht angelegt werden"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "alreadyExists": !created})
	}
}
