package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/observability"
)

// routeNotFound labels requests that matched no route, keeping scanner
// traffic from minting one series per probed path.
const routeNotFound = "not_found"

// Metrics records inflight count and per-route latency. The scrape endpoint
// itself is not observed.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		m.IncInflight()
		start := time.Now()
		c.Next()
		m.DecInflight()

		route := c.FullPath()
		if route == "" {
			route = routeNotFound
		}
		m.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
