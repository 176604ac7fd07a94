package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsPreflight(t *testing.T, mw gin.HandlerFunc, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.POST("/api/newsletter/subscribe", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/newsletter/subscribe", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	return serve(r, req)
}

func TestCORSOrigins(t *testing.T) {
	cases := []struct {
		name       string
		allowLocal bool
		origin     string
		allowed    bool
	}{
		{"configured", false, "https://futureofgaming.com", true},
		{"configured trailing slash", false, "https://www.futureofgaming.com", true},
		{"local in dev", true, "http://localhost:4321", true},
		{"local in prod", false, "http://localhost:4321", false},
		{"unknown", true, "https://evil.example", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := CORS([]string{"https://futureofgaming.com", "https://www.futureofgaming.com/"}, tc.allowLocal)
			rec := corsPreflight(t, mw, tc.origin)
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Fatalf("allow-origin: got=%q want=%q", got, tc.origin)
			}
			if !tc.allowed && got != "" {
				t.Fatalf("unexpected allow-origin %q", got)
			}
		})
	}
}

func TestCORSWithoutOriginsIsPassThrough(t *testing.T) {
	rec := corsPreflight(t, CORS(nil, false), "https://futureofgaming.com")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
