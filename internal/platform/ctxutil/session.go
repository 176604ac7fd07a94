package ctxutil

import (
	"context"

	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
)

type sessionKey struct{}

func WithSession(ctx context.Context, s *user.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSession returns the verified session, or nil for anonymous requests.
func GetSession(ctx context.Context) *user.Session {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(sessionKey{}).(*user.Session); ok {
		return s
	}
	return nil
}
