package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
)

var ErrNoSession = errors.New("no session")

// SessionClaims is the token minted by the auth service.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionResolver verifies the session token carried by a request. Identity
// is owned by the auth service; this side only checks signatures.
type SessionResolver interface {
	Resolve(r *http.Request) (*user.Session, error)
	Parse(token string) (*user.Session, error)
}

type sessionResolver struct {
	secret     []byte
	cookieName string
}

func NewSessionResolver(secret, cookieName string) SessionResolver {
	return &sessionResolver{secret: []byte(secret), cookieName: cookieName}
}

// Resolve reads the session cookie, falling back to a bearer token.
func (s *sessionResolver) Resolve(r *http.Request) (*user.Session, error) {
	if r == nil {
		return nil, ErrNoSession
	}
	token := ""
	if s.cookieName != "" {
		if c, err := r.Cookie(s.cookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		token = BearerToken(r.Header.Get("Authorization"))
	}
	return s.Parse(token)
}

func (s *sessionResolver) Parse(token string) (*user.Session, error) {
	if token == "" || len(s.secret) == 0 {
		return nil, ErrNoSession
	}
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired session token")
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("session token missing sub or sid")
	}
	return &user.Session{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
