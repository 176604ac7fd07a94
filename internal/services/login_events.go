package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/clients/nats"
	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// loginPublishTimeout caps the publish call made while serving /loading.
const loginPublishTimeout = 3 * time.Second

// LoginEventPublisher hands a login event to the asynchronous reconciler.
// sessionKey identifies the session for downstream de-duplication.
type LoginEventPublisher interface {
	PublishLogin(ctx context.Context, sessionKey string, ev newsletter.LoginEvent) error
}

// LoginEventEmitter emits user.logged_in at most once per session.
type LoginEventEmitter interface {
	// Emit never fails the caller; errors are logged.
	Emit(ctx context.Context, sess *user.Session)
}

type loginEventEmitter struct {
	log     *logger.Logger
	dedupe  redis.Deduper
	ttl     time.Duration
	pub     LoginEventPublisher
	timeout time.Duration
	metrics *observability.Metrics
}

// NewLoginEventEmitter claims "{userID}-{sessionID}" in dedupe for ttl before
// publishing. A nil dedupe publishes on every call.
func NewLoginEventEmitter(log *logger.Logger, dedupe redis.Deduper, ttl time.Duration, pub LoginEventPublisher, metrics *observability.Metrics) LoginEventEmitter {
	if pub == nil {
		pub = NoopLoginPublisher{}
	}
	return &loginEventEmitter{
		log:     log.With("service", "LoginEventEmitter"),
		dedupe:  dedupe,
		ttl:     ttl,
		pub:     pub,
		timeout: loginPublishTimeout,
		metrics: metrics,
	}
}

func (e *loginEventEmitter) Emit(ctx context.Context, sess *user.Session) {
	if sess == nil || sess.UserID == "" || sess.SessionID == "" {
		return
	}
	key := sess.Key()
	claimed := false
	if e.dedupe != nil {
		ok, err := e.dedupe.Claim(ctx, key, e.ttl)
		switch {
		case err != nil:
			// Downstream reconcile is idempotent, so a duplicate is harmless.
			e.log.Warn("Login event dedupe unavailable, emitting anyway", "user_id", sess.UserID, "error", err)
		case !ok:
			e.metrics.LoginEvent("duplicate")
			return
		default:
			claimed = true
		}
	}

	ev := newsletter.LoginEvent{UserID: sess.UserID, Email: sess.Email, Name: sess.Name}
	pubCtx, cancel := context.WithTimeout(ctx, e.timeout)
	err := e.pub.PublishLogin(pubCtx, key, ev)
	cancel()
	if err != nil {
		e.log.Error("Failed to emit login event", "user_id", sess.UserID, "session_id", sess.SessionID, "error", err)
		e.metrics.LoginEvent("error")
		if claimed {
			if err := e.dedupe.Release(ctx, key); err != nil {
				e.log.Warn("Login event claim release failed", "user_id", sess.UserID, "error", err)
			}
		}
		return
	}
	e.log.Info("Login event emitted", "user_id", sess.UserID, "event", newsletter.EventUserLoggedIn)
	e.metrics.LoginEvent("emitted")
}

// NATSLoginPublisher sends the event on a NATS subject.
type NATSLoginPublisher struct {
	pub     *nats.Publisher
	subject string
}

func NewNATSLoginPublisher(pub *nats.Publisher, subject string) *NATSLoginPublisher {
	if subject == "" {
		subject = newsletter.EventUserLoggedIn
	}
	return &NATSLoginPublisher{pub: pub, subject: subject}
}

func (p *NATSLoginPublisher) PublishLogin(ctx context.Context, _ string, ev newsletter.LoginEvent) error {
	return p.pub.Publish(ctx, p.subject, ev)
}

// ReconcileLoginHandler consumes login events from the bus.
func ReconcileLoginHandler(rec NewsletterReconciler) nats.Handler {
	return func(ctx context.Context, data []byte) error {
		var ev newsletter.LoginEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode login event: %w", err)
		}
		_, err := rec.Reconcile(ctx, ev)
		return err
	}
}

// NoopLoginPublisher drops events. Used when no event bus is configured.
type NoopLoginPublisher struct{}

func (NoopLoginPublisher) PublishLogin(context.Context, string, newsletter.LoginEvent) error {
	return nil
}
