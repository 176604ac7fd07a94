package handlers

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/platform/httpx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// AuthProxy forwards /api/auth/* to the external auth service, which owns
// sign-in, sign-out and session cookies.
type AuthProxy struct {
	log   *logger.Logger
	proxy *httputil.ReverseProxy
}

func NewAuthProxy(log *logger.Logger, upstream string) (*AuthProxy, error) {
	target, err := url.Parse(upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid auth upstream %q", upstream)
	}
	log = log.With("handler", "AuthProxy", "upstream", target.Host)
	p := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Set("X-Forwarded-For", httpx.ClientIP(pr.In))
			pr.Out.Host = pr.In.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("Auth upstream failed", "path", r.URL.Path, "error", err)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"Authentication service unavailable"}`))
		},
	}
	return &AuthProxy{log: log, proxy: p}, nil
}

// ANY /api/auth/*path
func (h *AuthProxy) Forward(c *gin.Context) {
	h.proxy.ServeHTTP(c.Writer, c.Request)
}
