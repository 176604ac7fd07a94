package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	"github.com/yungbote/futureofgaming-backend/internal/http/response"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
)

const (
	AuthRateLimitMessage    = "Too many login attempts. Please try again in 15 minutes."
	AuthRetryAfterSeconds   = 900
	authRateLimiterMetricID = "auth"
)

// AuthRateLimit limits non-GET auth requests per client IP. Session checks
// (GET) are never counted.
func AuthRateLimit(limiter redis.RateLimiter, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		res := limiter.Limit(c.Request.Context(), "ip:"+httpx.ClientIP(c.Request))
		if !res.Allowed {
			m.RateLimitDecision(authRateLimiterMetricID, "denied")
			response.AbortRateLimited(c, AuthRateLimitMessage, AuthRetryAfterSeconds)
			return
		}
		m.RateLimitDecision(authRateLimiterMetricID, "allowed")
		c.Next()
	}
}
