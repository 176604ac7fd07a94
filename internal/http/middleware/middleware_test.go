package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/services"
)

type fakeResolver struct {
	sessions map[string]*user.Session
}

func (f fakeResolver) Resolve(r *http.Request) (*user.Session, error) {
	tok := services.BearerToken(r.Header.Get("Authorization"))
	if tok == "" {
		return nil, services.ErrNoSession
	}
	return f.Parse(tok)
}

func (f fakeResolver) Parse(token string) (*user.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, services.ErrNoSession
}

type denyAfter struct {
	n    int
	seen []string
}

func (d *denyAfter) Limit(_ context.Context, id string) redis.LimitResult {
	d.seen = append(d.seen, id)
	return redis.LimitResult{Allowed: len(d.seen) <= d.n}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newAuth(t *testing.T, adminToken string) *AuthMiddleware {
	return NewAuthMiddleware(testLogger(t), fakeResolver{sessions: map[string]*user.Session{
		"reader": {UserID: "u1", SessionID: "s1", Email: "reader@example.com"},
		"admin":  {UserID: "u2", SessionID: "s2", Role: user.RoleAdmin},
	}}, adminToken)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAttachSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(newAuth(t, "").AttachSession())
	r.GET("/", func(c *gin.Context) {
		if s := ctxutil.GetSession(c.Request.Context()); s != nil {
			c.String(http.StatusOK, s.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	cases := map[string]string{"": "anonymous", "Bearer reader": "u1", "Bearer forged": "anonymous"}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := serve(r, req).Body.String(); got != want {
			t.Fatalf("%q: got=%q want=%q", header, got, want)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	am := newAuth(t, "s3cret")
	r := gin.New()
	r.Use(am.AttachSession())
	r.POST("/regen", am.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Bearer reader", http.StatusUnauthorized},
		{"Bearer s3cret", http.StatusOK},
		{"Bearer admin", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/regen", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := serve(r, req)
		if rec.Code != tc.want {
			t.Fatalf("%q: got=%d want=%d", tc.header, rec.Code, tc.want)
		}
	}

	open := newAuth(t, "")
	r = gin.New()
	r.POST("/regen", open.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	if rec := serve(r, httptest.NewRequest(http.MethodPost, "/regen", nil)); rec.Code != http.StatusOK {
		t.Fatalf("guard without token should be open, got=%d", rec.Code)
	}
}

func TestAuthRateLimitSkipsGET(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &denyAfter{n: 1}
	r := gin.New()
	r.Any("/api/auth/*path", AuthRateLimit(limiter, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil)); rec.Code != http.StatusOK {
			t.Fatalf("GET %d: got=%d", i, rec.Code)
		}
	}
	if len(limiter.seen) != 0 {
		t.Fatalf("GET requests must not be counted: %v", limiter.seen)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in/social", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if rec := serve(r, req); rec.Code != http.StatusOK {
		t.Fatalf("first POST: got=%d", rec.Code)
	}
	rec := serve(r, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST: got=%d", rec.Code)
	}
	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != AuthRateLimitMessage || body.RetryAfter != AuthRetryAfterSeconds {
		t.Fatalf("body: %+v", body)
	}
	if limiter.seen[0] != "ip:203.0.113.9" {
		t.Fatalf("identifier: %q", limiter.seen[0])
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	if rec := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))); rec.Code != http.StatusOK {
		t.Fatalf("small body: got=%d", rec.Code)
	}
	if rec := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("declared oversize: got=%d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
	req.ContentLength = -1
	if rec := serve(r, req); rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("streamed oversize: got=%d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("nosniff: %q", got)
	}
	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "default-src 'self'") || !strings.Contains(csp, "https://esm.sh") {
		t.Fatalf("csp: %q", csp)
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "edge-abc123")
	req.RemoteAddr = "203.0.113.9:5555"
	rec := serve(r, req)
	if seen == nil || seen.RequestID != "edge-abc123" || seen.ClientIP != "203.0.113.9" {
		t.Fatalf("trace data: %+v", seen)
	}
	if rec.Header().Get("X-Request-Id") != "edge-abc123" || rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("headers: %v", rec.Header())
	}

	for _, bad := range []string{"has space", strings.Repeat("a", 200)} {
		req = httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-Id", bad)
		rec = serve(r, req)
		if got := rec.Header().Get("X-Request-Id"); got == bad || got == "" {
			t.Fatalf("inbound id %q should be replaced, got=%q", bad, got)
		}
	}
}
