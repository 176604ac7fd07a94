package app

import (
	"fmt"

	"github.com/yungbote/futureofgaming-backend/internal/http"
	httpH "github.com/yungbote/futureofgaming-backend/internal/http/handlers"
	httpMW "github.com/yungbote/futureofgaming-backend/internal/http/middleware"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/site"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	AuthProxy  *httpH.AuthProxy
	PatentCard *httpH.PatentCardHandler
	Newsletter *httpH.NewsletterHandler
	Pages      *httpH.PageHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, siteCfg *site.Config, db httpH.Pinger, services Services) (Handlers, error) {
	log.Info("Wiring handlers...")
	proxy, err := httpH.NewAuthProxy(log, cfg.Auth.UpstreamURL)
	if err != nil {
		return Handlers{}, fmt.Errorf("init auth proxy: %w", err)
	}
	production := cfg.IsProduction()
	return Handlers{
		Health:     httpH.NewHealthHandler(log, db, production),
		AuthProxy:  proxy,
		PatentCard: httpH.NewPatentCardHandler(log, services.Scorecard),
		Newsletter: httpH.NewNewsletterHandler(log, services.Subscribe, production),
		Pages:      httpH.NewPageHandler(log, services.Pages, services.LoginEvents, siteCfg, authBaseURL(cfg)),
	}, nil
}

func wireMiddleware(log *logger.Logger, cfg *config.Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Session, cfg.Auth.AdminToken),
	}
}

func wireRouterConfig(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, templates *site.Templates, services Services, handlers Handlers, middleware Middleware) http.RouterConfig {
	rc := http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		Templates:         templates,
		CORSOrigins:       cfg.CORS.AllowedOrigins,
		LocalOrigins:      !cfg.IsProduction(),
		AuthMiddleware:    middleware.Auth,
		AuthRateLimiter:   services.AuthLimiter,
		AuthProxy:         handlers.AuthProxy,
		PatentCardHandler: handlers.PatentCard,
		NewsletterHandler: handlers.Newsletter,
		PageHandler:       handlers.Pages,
		HealthHandler:     handlers.Health,
	}
	if cfg.OTel.Enabled {
		rc.TracingService = cfg.OTel.ServiceName
	}
	return rc
}

// authBaseURL is where the login page sends the browser. Production serves
// the auth routes from the site origin; locally they sit on the dev port.
func authBaseURL(cfg *config.Config) string {
	if cfg.IsProduction() {
		return cfg.Site.URL
	}
	return "http://localhost:" + cfg.App.Port
}
