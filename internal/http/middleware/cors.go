package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// localOrigins are the frontend dev servers, trusted only outside production.
var localOrigins = []string{
	"http://localhost:3000",
	"http://localhost:4321",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:4321",
}

// CORS lets the site frontends call the newsletter and auth endpoints with
// credentials and embed scorecard images. Origins are compared without a
// trailing slash.
func CORS(allowed []string, allowLocal bool) gin.HandlerFunc {
	candidates := allowed
	if allowLocal {
		candidates = append(append([]string(nil), allowed...), localOrigins...)
	}
	origins := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, o := range candidates {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
