package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecurityHeaders sets the usual hardening headers. Uploaded images are
// served cross-origin, so resources are not restricted to same-origin.
func SecurityHeaders() gin.HandlerFunc {
	headers := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		CustomBrowserXssValue: "0",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data: https:",
	})

	return func(c *gin.Context) {
		if err := headers.Process(c.Writer, c.Request); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Header("Cross-Origin-Resource-Policy", "cross-origin")
		c.Next()
	}
}

// CORS allows credentialed requests from the configured frontend origin.
// Requests from any other origin are refused with 403.
func CORS(frontendURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{strings.TrimRight(frontendURL, "/")},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "RateLimit-Limit", "RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
