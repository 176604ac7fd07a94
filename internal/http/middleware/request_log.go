package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// quietPaths are polled by load balancers and the scraper; successful hits
// are logged at debug so they do not drown page traffic.
var quietPaths = map[string]bool{
	"/health":      true,
	"/healthcheck": true,
	"/metrics":     true,
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "request_id", td.RequestID, "trace_id", td.TraceID, "client_ip", td.ClientIP)
		}
		if sess := ctxutil.GetSession(ctx); sess != nil {
			fields = append(fields, "user_id", sess.UserID, "session_id", sess.SessionID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		case quietPaths[route]:
			log.Debug("Request served", fields...)
		default:
			log.Info("Request served", fields...)
		}
	}
}
