package app

import (
	"fmt"

	"github.com/yungbote/futureofgaming-backend/internal/clients/nats"
	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/scorecard"
	"github.com/yungbote/futureofgaming-backend/internal/services"
	"github.com/yungbote/futureofgaming-backend/internal/temporalx"
	"github.com/yungbote/futureofgaming-backend/internal/temporalx/temporalworker"
	"github.com/yungbote/futureofgaming-backend/internal/temporalx/workflows"
)

const (
	newsletterLimitPrefix = "ratelimit:newsletter"
	authLimitPrefix       = "ratelimit:auth"
	loginDedupePrefix     = "login-event"
	scorecardOwner        = "Future of Gaming"
)

type Services struct {
	Scorecard   services.ScorecardService
	Reconciler  services.NewsletterReconciler
	Subscribe   services.SubscribeService
	Publish     services.PublishService
	LoginEvents services.LoginEventEmitter
	Session     services.SessionResolver
	Pages       services.PageService

	AuthLimiter redis.RateLimiter

	TemporalWorker *temporalworker.Runner
	NATSConsumer   *nats.Consumer
}

func wireServices(log *logger.Logger, cfg *config.Config, flags *config.Flags, repos Repos, clients Clients, metrics *observability.Metrics, runWorker bool) (Services, error) {
	log.Info("Wiring services...")

	// Redis-backed helpers stay nil interfaces without Redis so callers skip them.
	var (
		newsletterLimiter redis.RateLimiter
		authLimiter       redis.RateLimiter
		dedupe            redis.Deduper
	)
	if clients.Redis != nil {
		newsletterLimiter = redis.NewSlidingWindowLimiter(log, clients.Redis, newsletterLimitPrefix, cfg.RateLimit.NewsletterLimit, cfg.RateLimit.NewsletterWindow)
		authLimiter = redis.NewSlidingWindowLimiter(log, clients.Redis, authLimitPrefix, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow)
		dedupe = redis.NewDeduper(clients.Redis, loginDedupePrefix)
	}

	svg := scorecard.NewSVGRenderer().WithCopyright(scorecardOwner, scorecard.CurrentYear)
	if cfg.Scorecard.WrapWidth > 0 {
		svg.WrapWidth = cfg.Scorecard.WrapWidth
	}
	var png *scorecard.PNGRenderer
	if cfg.Scorecard.PNGEnabled {
		r, err := scorecard.NewPNGRenderer()
		if err != nil {
			return Services{}, fmt.Errorf("init png renderer: %w", err)
		}
		if cfg.Scorecard.WrapWidth > 0 {
			r.WrapWidth = cfg.Scorecard.WrapWidth
		}
		png = r
	}
	scorecardService := services.NewScorecardService(log, repos.Patent, clients.Store, svg, png, metrics)

	reconciler := services.NewNewsletterReconciler(log, clients.List, flags, repos.User, metrics)

	var spam services.SpamChecker
	if clients.Spam != nil {
		spam = clients.Spam
	}
	subscribeService := services.NewSubscribeService(log, clients.List, spam, newsletterLimiter, repos.User, metrics)

	publishService := services.NewPublishService(log, repos.Patent, clients.Mailer, services.PublishNotifyConfig{
		From:        cfg.Email.From,
		To:          cfg.Email.Admin,
		SiteURL:     cfg.Site.URL,
		CalendarURL: cfg.Email.CalendarURL,
	}, metrics)

	tcfg := temporalx.FromConfig(cfg.Temporal)

	var loginPublisher services.LoginEventPublisher
	switch cfg.Events.Publisher {
	case "temporal":
		if clients.Temporal == nil {
			return Services{}, fmt.Errorf("events.publisher=temporal requires TEMPORAL_ADDRESS")
		}
		loginPublisher = workflows.NewLoginStarter(clients.Temporal, tcfg.TaskQueue)
	case "nats":
		if clients.NATS == nil {
			return Services{}, fmt.Errorf("events.publisher=nats requires a NATS connection")
		}
		loginPublisher = services.NewNATSLoginPublisher(nats.NewPublisher(clients.NATS), cfg.NATS.Subject)
	default:
		log.Warn("Login events are dropped", "publisher", cfg.Events.Publisher)
		loginPublisher = services.NoopLoginPublisher{}
	}
	loginEvents := services.NewLoginEventEmitter(log, dedupe, cfg.Events.DedupeTTL, loginPublisher, metrics)

	var natsConsumer *nats.Consumer
	if clients.NATS != nil {
		natsConsumer = nats.NewConsumer(log, clients.NATS, cfg.NATS.Subject, cfg.NATS.Queue)
	}

	var temporalRunner *temporalworker.Runner
	if runWorker {
		w, err := temporalworker.NewRunner(log, clients.Temporal, tcfg, &workflows.Activities{
			Log:        log,
			Publish:    publishService,
			Newsletter: reconciler,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init temporal worker: %w", err)
		}
		temporalRunner = w
	}

	return Services{
		Scorecard:      scorecardService,
		Reconciler:     reconciler,
		Subscribe:      subscribeService,
		Publish:        publishService,
		LoginEvents:    loginEvents,
		Session:        services.NewSessionResolver(cfg.Auth.SessionSecret, cfg.Auth.CookieName),
		Pages:          services.NewPageService(log, repos.Patent, clients.List),
		AuthLimiter:    authLimiter,
		TemporalWorker: temporalRunner,
		NATSConsumer:   natsConsumer,
	}, nil
}
