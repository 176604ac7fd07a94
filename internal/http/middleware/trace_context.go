package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxInboundIDLen = 128
)

// AttachTraceContext tags the request with a request id, a trace id and the
// resolved client address. Ids supplied by the edge proxy are reused when
// they look sane; the active otel span wins over a supplied trace id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: inboundID(c.GetHeader(headerRequestID)),
			ClientIP:  httpx.ClientIP(c.Request),
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		} else {
			td.TraceID = inboundID(c.GetHeader(headerTraceID))
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("request_id", td.RequestID)
		h := c.Writer.Header()
		h.Set(headerRequestID, td.RequestID)
		h.Set(headerTraceID, td.TraceID)
		c.Next()
	}
}

// inboundID returns v when it is a short printable token, otherwise a fresh
// uuid. Response headers echo it, so control characters are never kept.
func inboundID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxInboundIDLen {
		return uuid.NewString()
	}
	for _, r := range v {
		if r < 0x21 || r > 0x7e {
			return uuid.NewString()
		}
	}
	return v
}
