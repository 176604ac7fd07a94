package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/http/response"
	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/services"
)

type AuthMiddleware struct {
	log        *logger.Logger
	resolver   services.SessionResolver
	adminToken string
}

func NewAuthMiddleware(log *logger.Logger, resolver services.SessionResolver, adminToken string) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), resolver: resolver, adminToken: adminToken}
}

// AttachSession resolves the caller's session, if any. Requests without a
// valid session continue anonymously.
func (am *AuthMiddleware) AttachSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.resolver == nil {
			c.Next()
			return
		}
		sess, err := am.resolver.Resolve(c.Request)
		if err != nil {
			if !errors.Is(err, services.ErrNoSession) {
				am.log.Debug("Ignoring invalid session", "path", c.Request.URL.Path, "error", err)
			}
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

// RequireAdmin accepts the configured admin bearer token or an admin session.
// With no token configured the guard is open.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.adminToken == "" {
			c.Next()
			return
		}
		if tok := services.BearerToken(c.GetHeader("Authorization")); tok != "" &&
			subtle.ConstantTimeCompare([]byte(tok), []byte(am.adminToken)) == 1 {
			c.Next()
			return
		}
		if ctxutil.GetSession(c.Request.Context()).IsAdmin() {
			c.Next()
			return
		}
		response.AbortError(c, http.StatusUnauthorized, "Unauthorized")
	}
}
