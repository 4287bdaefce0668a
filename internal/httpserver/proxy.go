package httpserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const proxyBodyLimit = 1 << 20

func searchHandler(svc searchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.Query(c.Request.Context(), c.Query("q"))
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Suche fehlgeschlagen"})
			return
		}
		c.Data(http.StatusOK, "application/json", result)
	}
}

// proxyHandler forwards store-plane requests to the backend so the browser
// never needs the publishable key. Status and body pass through verbatim.
func proxyHandler(proxy storeProxy) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, proxyBodyLimit))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige Anfrage"})
			return
		}

		status, data, err := proxy.Proxy(c.Request.Context(), c.Request.Method, c.Param("path"), c.Request.URL.Query(), body)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": "Backend nicht erreichbar"})
			return
		}
		c.Data(status, "application/json", data)
	}
}
