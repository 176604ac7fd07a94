package app

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/http"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/platform/postgres"
	"github.com/yungbote/futureofgaming-backend/internal/services"
	"github.com/yungbote/futureofgaming-backend/internal/site"
)

// Options selects which background roles this process takes on.
type Options struct {
	// ConfigPath, when set, is watched for feature-flag changes.
	ConfigPath string
	// RunWorker polls the Temporal task queue in this process.
	RunWorker bool
}

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Flags    *config.Flags
	Metrics  *observability.Metrics
	PG       *postgres.PostgresService
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *http.Server

	opts         Options
	otelShutdown func(context.Context) error
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	otelShutdown := observability.InitOTel(ctx, log, cfg.OTel, cfg.App.Env)
	metrics := observability.Init()

	pg, err := postgres.NewPostgresService(ctx, log, cfg.DB)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if sqlDB, err := pg.DB().DB(); err == nil {
		metrics.RegisterDB("postgres", sqlDB)
	}

	a := &App{
		Log:          log,
		Cfg:          cfg,
		Flags:        config.NewFlags(cfg),
		Metrics:      metrics,
		PG:           pg,
		opts:         opts,
		otelShutdown: otelShutdown,
	}

	a.Repos = wireRepos(pg.DB(), log)

	a.Clients, err = wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Services, err = wireServices(log, cfg, a.Flags, a.Repos, a.Clients, metrics, opts.RunWorker)
	if err != nil {
		a.Close()
		return nil, err
	}

	siteCfg, err := site.Load(cfg.Site.URL)
	if err != nil {
		a.Close()
		return nil, err
	}
	templates, err := site.ParseTemplates()
	if err != nil {
		a.Close()
		return nil, err
	}

	handlers, err := wireHandlers(log, cfg, siteCfg, pg, a.Services)
	if err != nil {
		a.Close()
		return nil, err
	}
	middleware := wireMiddleware(log, cfg, a.Services)
	a.Server = http.NewServer(log, wireRouterConfig(log, cfg, metrics, templates, a.Services, handlers, middleware))
	return a, nil
}

// Serve runs the HTTP server plus whichever background roles are enabled,
// until ctx is done or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Run(gctx, net.JoinHostPort("", a.Cfg.App.Port), a.Cfg.App.ShutdownTimeout)
	})
	a.startBackground(gctx, g)
	return g.Wait()
}

// RunWorker runs only the background roles. It blocks until ctx is done.
func (a *App) RunWorker(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Services.TemporalWorker == nil && a.Services.NATSConsumer == nil {
		return fmt.Errorf("no worker configured: enable the temporal worker or events.publisher=nats")
	}
	g, gctx := errgroup.WithContext(ctx)
	a.startBackground(gctx, g)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

func (a *App) startBackground(ctx context.Context, g *errgroup.Group) {
	if a.opts.ConfigPath != "" {
		g.Go(func() error {
			err := config.Watch(ctx, a.Log, a.opts.ConfigPath, func(next *config.Config) {
				a.Flags.Apply(next)
				a.Log.Info("Feature flags reloaded", "auto_subscribe_on_login", a.Flags.AutoSubscribeOnLogin())
			})
			if err != nil {
				a.Log.Warn("Config watch stopped", "error", err)
			}
			return nil
		})
	}
	if a.Services.NATSConsumer != nil {
		g.Go(func() error {
			return a.Services.NATSConsumer.Run(ctx, services.ReconcileLoginHandler(a.Services.Reconciler))
		})
	}
	if a.Services.TemporalWorker != nil {
		g.Go(func() error {
			return a.Services.TemporalWorker.Start(ctx)
		})
	}
}

// Regenerate re-renders one scorecard and returns its public URL.
func (a *App) Regenerate(ctx context.Context, patentNumber string) (string, error) {
	return a.Services.Scorecard.Regenerate(ctx, patentNumber)
}

// PublishNow runs the publish job once, outside the schedule.
func (a *App) PublishNow(ctx context.Context) (*patent.PublishResult, error) {
	return a.Services.Publish.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.PG != nil {
		_ = a.PG.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
