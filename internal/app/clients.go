package app

import (
	"context"
	"fmt"
	"strings"

	natsgo "github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/futureofgaming-backend/internal/clients/nats"
	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	"github.com/yungbote/futureofgaming-backend/internal/platform/cleantalk"
	"github.com/yungbote/futureofgaming-backend/internal/platform/config"
	"github.com/yungbote/futureofgaming-backend/internal/platform/emailoctopus"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/platform/objectstore"
	"github.com/yungbote/futureofgaming-backend/internal/platform/resend"
	"github.com/yungbote/futureofgaming-backend/internal/services"
	"github.com/yungbote/futureofgaming-backend/internal/temporalx"
)

type Clients struct {
	Redis    *goredis.Client
	Store    objectstore.Gateway
	List     services.ListProvider
	Spam     *cleantalk.Client
	Mailer   services.Mailer
	Temporal temporalsdkclient.Client
	NATS     *natsgo.Conn
}

// wireClients builds the outbound clients. Only the object store is
// mandatory; every other client degrades to a logged warning.
func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Object storage
	store, err := resolveObjectStore(ctx, log, cfg.Storage)
	if err != nil {
		return Clients{}, err
	}
	out.Store = store

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		rdb, err := redis.NewClient(ctx, log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	} else {
		log.Warn("REDIS_ADDR not set; rate limiting and login dedupe disabled")
	}

	// Mailing list
	list, err := emailoctopus.New(log, emailoctopus.Config{
		APIKey:     cfg.Newsletter.APIKey,
		ListID:     cfg.Newsletter.ListID,
		BaseURL:    cfg.Newsletter.BaseURL,
		Timeout:    cfg.Newsletter.Timeout,
		MaxRetries: 2,
	})
	if err != nil {
		log.Warn("Mailing list client disabled", "error", err)
		out.List = services.UnconfiguredList{}
	} else {
		out.List = list
	}

	// Spam check
	out.Spam = cleantalk.New(log, cleantalk.Config{
		APIKey:  cfg.CleanTalk.APIKey,
		BaseURL: cfg.CleanTalk.BaseURL,
		Timeout: cfg.CleanTalk.Timeout,
	})

	// Transactional e-mail
	mailer, err := resend.New(log, resend.Config{
		APIKey:      cfg.Email.APIKey,
		BaseURL:     cfg.Email.BaseURL,
		DefaultFrom: cfg.Email.From,
		Timeout:     cfg.Email.Timeout,
		MaxRetries:  2,
	})
	if err != nil {
		log.Warn("E-mail client disabled; publish summaries will not be sent", "error", err)
	} else {
		out.Mailer = mailer
	}

	// Temporal
	tc, err := temporalx.NewClient(ctx, log, temporalx.FromConfig(cfg.Temporal))
	if err != nil {
		if cfg.Events.Publisher == "temporal" {
			out.Close()
			return Clients{}, fmt.Errorf("init temporal: %w", err)
		}
		log.Warn("Temporal unavailable", "error", err)
	}
	out.Temporal = tc

	// NATS
	if cfg.Events.Publisher == "nats" {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init nats: %w", err)
		}
		out.NATS = nc
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.NATS != nil {
		_ = c.NATS.Drain()
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
