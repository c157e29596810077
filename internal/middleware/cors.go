package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS answers preflights and sets the allow headers. With no origins, or
// with "*", any origin is accepted; otherwise the request Origin is echoed only
// when listed. Content-Disposition is exposed so browsers can name the XLSX
// and PDF downloads.
func CORS(origins ...string) gin.HandlerFunc {
	permitidas := make(map[string]bool, len(origins))
	todas := len(origins) == 0
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			todas = true
		}
		if o != "" {
			permitidas[o] = true
		}
	}
	if len(permitidas) == 0 {
		todas = true
	}

	return func(c *gin.Context) {
		origem := c.GetHeader("Origin")
		switch {
		case todas:
			c.Header("Access-Control-Allow-Origin", "*")
		case permitidas[origem]:
			c.Header("Access-Control-Allow-Origin", origem)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition, Retry-After")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
