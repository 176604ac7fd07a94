package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"script-src 'self' 'unsafe-inline' https://esm.sh https://analytics.futureofgaming.com",
	"img-src 'self' data: https:",
	"connect-src 'self' https:",
	"font-src 'self' data:",
	"frame-ancestors 'self'",
	"object-src 'none'",
	"base-uri 'self'",
}, "; ")

// SecurityHeaders sets the CSP and the usual hardening headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		c.Next()
	}
}
