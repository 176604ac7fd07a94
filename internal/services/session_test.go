package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-session-secret"

func signSession(t *testing.T, secret string, method jwt.SigningMethod, claims SessionClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func validClaims() SessionClaims {
	return SessionClaims{
		SessionID: "s1",
		Email:     "ada@example.com",
		Name:      "Ada Lovelace",
		Role:      "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestSessionResolverCookieAndBearer(t *testing.T) {
	res := NewSessionResolver(testSecret, "fog_session")
	tok := signSession(t, testSecret, jwt.SigningMethodHS256, validClaims())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "fog_session", Value: tok})
	sess, err := res.Resolve(r)
	if err != nil {
		t.Fatalf("cookie: %v", err)
	}
	if sess.UserID != "u1" || sess.SessionID != "s1" || sess.Email != "ada@example.com" || !sess.IsAdmin() {
		t.Fatalf("session: %+v", sess)
	}
	if sess.Key() != "u1-s1" {
		t.Fatalf("key: %q", sess.Key())
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	if _, err := res.Resolve(r); err != nil {
		t.Fatalf("bearer: %v", err)
	}
}

func TestSessionResolverRejects(t *testing.T) {
	res := NewSessionResolver(testSecret, "fog_session")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noSID := validClaims()
	noSID.SessionID = ""

	cases := map[string]string{
		"wrong secret": signSession(t, "other", jwt.SigningMethodHS256, validClaims()),
		"wrong alg":    signSession(t, testSecret, jwt.SigningMethodHS512, validClaims()),
		"expired":      signSession(t, testSecret, jwt.SigningMethodHS256, expired),
		"missing sid":  signSession(t, testSecret, jwt.SigningMethodHS256, noSID),
		"garbage":      "not.a.token",
	}
	for name, tok := range cases {
		if _, err := res.Parse(tok); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := res.Resolve(r); !errors.Is(err, ErrNoSession) {
		t.Fatalf("anonymous: want ErrNoSession got %v", err)
	}
	if _, err := NewSessionResolver("", "fog_session").Parse(signSession(t, testSecret, jwt.SigningMethodHS256, validClaims())); !errors.Is(err, ErrNoSession) {
		t.Fatalf("no secret configured: want ErrNoSession got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	if got := BearerToken("bearer abc"); got != "abc" {
		t.Fatalf("got=%q", got)
	}
	if got := BearerToken("Basic abc"); got != "" {
		t.Fatalf("got=%q", got)
	}
}
