package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded first hop", "203.0.113.7, 10.0.0.1", "198.51.100.1", "10.0.0.2:5000", "203.0.113.7"},
		{"real ip", "", "198.51.100.1", "10.0.0.2:5000", "198.51.100.1"},
		{"remote addr", "", "", "10.0.0.2:5000", "10.0.0.2"},
		{"blank forwarded", " , 10.0.0.1", "", "10.0.0.2:5000", "10.0.0.2"},
		{"unknown", "", "", "", "0.0.0.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := ClientIP(r); got != tc.want {
				t.Fatalf("ClientIP: got=%q want=%q", got, tc.want)
			}
		})
	}
}

type statusErr int

func (e statusErr) Error() string       { return "status" }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) || IsRetryableError(context.Canceled) {
		t.Fatalf("nil and cancellation must not retry")
	}
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Fatalf("deadline should retry")
	}
	if !IsRetryableError(statusErr(503)) || !IsRetryableError(statusErr(429)) {
		t.Fatalf("5xx/429 should retry")
	}
	if IsRetryableError(statusErr(400)) || IsRetryableError(errors.New("plain")) {
		t.Fatalf("4xx and plain errors should not retry")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"30"}}}
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("expected cap, got %s", got)
	}
	if got := RetryAfterDuration(nil, 2*time.Second, 0); got != 2*time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("  abcdef ", 3); got != "abc..." {
		t.Fatalf("got=%q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("got=%q", got)
	}
}
