package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the flat error shape every JSON endpoint answers with.
type ErrorBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func RespondError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorBody{Error: msg})
}

// AbortError writes the error and stops the handler chain.
func AbortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}

// AbortRateLimited answers 429 with the retry hint in seconds.
func AbortRateLimited(c *gin.Context, msg string, retryAfterSeconds int) {
	c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorBody{Error: msg, RetryAfter: retryAfterSeconds})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
