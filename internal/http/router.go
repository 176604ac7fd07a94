package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	httpH "github.com/yungbote/futureofgaming-backend/internal/http/handlers"
	httpMW "github.com/yungbote/futureofgaming-backend/internal/http/middleware"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	Templates   render.HTMLRender
	CORSOrigins []string
	// LocalOrigins also trusts the localhost frontend dev servers.
	LocalOrigins bool
	// TracingService enables otelgin spans when set.
	TracingService string

	AuthMiddleware  *httpMW.AuthMiddleware
	AuthRateLimiter redis.RateLimiter
	AuthProxy       *httpH.AuthProxy

	PatentCardHandler *httpH.PatentCardHandler
	NewsletterHandler *httpH.NewsletterHandler
	PageHandler       *httpH.PageHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.SecurityHeaders())
	r.Use(httpMW.CORS(cfg.CORSOrigins, cfg.LocalOrigins))
	r.Use(httpMW.BodyLimit(httpMW.DefaultBodyLimit))
	if cfg.Templates != nil {
		r.HTMLRender = cfg.Templates
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (proxied)
		if cfg.AuthProxy != nil {
			api.Any("/auth/*path", httpMW.AuthRateLimit(cfg.AuthRateLimiter, cfg.Metrics), cfg.AuthProxy.Forward)
		}
	}

	sessioned := r.Group("/")
	if cfg.AuthMiddleware != nil {
		sessioned.Use(cfg.AuthMiddleware.AttachSession())
	}
	{
		// Patent cards
		if cfg.PatentCardHandler != nil {
			sessioned.GET("/api/patent-card/:file", cfg.PatentCardHandler.GetCard)
			regenerate := []gin.HandlerFunc{cfg.PatentCardHandler.Regenerate}
			if cfg.AuthMiddleware != nil {
				regenerate = append([]gin.HandlerFunc{cfg.AuthMiddleware.RequireAdmin()}, regenerate...)
			}
			sessioned.POST("/api/patent-card/:file/regenerate", regenerate...)
		}

		// Newsletter
		if cfg.NewsletterHandler != nil {
			sessioned.POST("/api/newsletter/subscribe", cfg.NewsletterHandler.Subscribe)
		}

		// Pages
		if cfg.PageHandler != nil {
			sessioned.GET("/", cfg.PageHandler.Home)
			sessioned.GET("/patent/:n", cfg.PageHandler.Patent)
			sessioned.GET("/archive", cfg.PageHandler.Archive)
			sessioned.GET("/about", cfg.PageHandler.About)
			sessioned.GET("/settings", cfg.PageHandler.Settings)
			sessioned.GET("/login", cfg.PageHandler.Login)
			sessioned.GET("/loading", cfg.PageHandler.Loading)
		}
	}

	if cfg.PageHandler != nil {
		notFound := []gin.HandlerFunc{cfg.PageHandler.NotFound}
		if cfg.AuthMiddleware != nil {
			notFound = append([]gin.HandlerFunc{cfg.AuthMiddleware.AttachSession()}, notFound...)
		}
		r.NoRoute(notFound...)
	} else {
		r.NoRoute(func(c *gin.Context) { c.String(nethttp.StatusNotFound, "Not found") })
	}

	return r
}
