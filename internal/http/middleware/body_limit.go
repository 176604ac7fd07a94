package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/http/response"
)

const DefaultBodyLimit = 10 << 10

// BodyLimit rejects declared oversize bodies with 413 and caps the rest, so
// a handler reading past n gets an *http.MaxBytesError.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			response.AbortError(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
