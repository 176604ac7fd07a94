package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	"github.com/yungbote/futureofgaming-backend/internal/data/repos"
	"github.com/yungbote/futureofgaming-backend/internal/domain/mail"
	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// ListProvider is the mailing list. Its status is the source of truth for
// subscription state.
type ListProvider interface {
	GetStatus(ctx context.Context, email string) (newsletter.ContactStatus, error)
	Subscribe(ctx context.Context, c newsletter.Contact) error
}

var ErrListUnconfigured = errors.New("mailing list not configured")

// UnconfiguredList stands in for the mailing list when no API key is set.
type UnconfiguredList struct{}

func (UnconfiguredList) GetStatus(context.Context, string) (newsletter.ContactStatus, error) {
	return "", ErrListUnconfigured
}

func (UnconfiguredList) Subscribe(context.Context, newsletter.Contact) error {
	return ErrListUnconfigured
}

type SpamChecker interface {
	CheckSpam(ctx context.Context, email string) (newsletter.SpamVerdict, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

type FeatureFlags interface {
	AutoSubscribeOnLogin() bool
}

// NewsletterReconciler subscribes a freshly logged-in user unless the list
// already knows them.
type NewsletterReconciler interface {
	Reconcile(ctx context.Context, ev newsletter.LoginEvent) (newsletter.Outcome, error)
	// The steps below are exposed individually for workflow activities.
	Enabled() bool
	Status(ctx context.Context, email string) (newsletter.ContactStatus, error)
	SubscribeFromLogin(ctx context.Context, ev newsletter.LoginEvent) error
	// RecordOutcome logs and counts a finished reconcile.
	RecordOutcome(userID string, outcome newsletter.Outcome)
}

type newsletterReconciler struct {
	log     *logger.Logger
	list    ListProvider
	flags   FeatureFlags
	users   repos.UserRepo
	metrics *observability.Metrics
}

func NewNewsletterReconciler(log *logger.Logger, list ListProvider, flags FeatureFlags, users repos.UserRepo, metrics *observability.Metrics) NewsletterReconciler {
	return &newsletterReconciler{
		log:     log.With("service", "NewsletterReconciler"),
		list:    list,
		flags:   flags,
		users:   users,
		metrics: metrics,
	}
}

func (r *newsletterReconciler) Enabled() bool {
	return r.flags != nil && r.flags.AutoSubscribeOnLogin()
}

func (r *newsletterReconciler) Status(ctx context.Context, email string) (newsletter.ContactStatus, error) {
	return r.list.GetStatus(ctx, newsletter.NormalizeEmail(email))
}

// SubscribeFromLogin subscribes and mirrors the result locally. A contact
// that already exists counts as success so a retried call converges.
func (r *newsletterReconciler) SubscribeFromLogin(ctx context.Context, ev newsletter.LoginEvent) error {
	first, last := newsletter.SplitName(ev.Name)
	err := r.list.Subscribe(ctx, newsletter.Contact{
		Email:     newsletter.NormalizeEmail(ev.Email),
		FirstName: first,
		LastName:  last,
		Source:    newsletter.SourceLoginAutoSubscribe,
	})
	if err != nil && !errors.Is(err, newsletter.ErrAlreadySubscribed) {
		return err
	}
	r.mirror(ctx, ev.UserID, newsletter.MirrorSubscribed)
	return nil
}

func (r *newsletterReconciler) Reconcile(ctx context.Context, ev newsletter.LoginEvent) (newsletter.Outcome, error) {
	if strings.TrimSpace(ev.Email) == "" {
		return newsletter.Outcome{}, fmt.Errorf("login event for user %q has no email", ev.UserID)
	}
	enabled := r.Enabled()
	status := newsletter.StatusAbsent
	if enabled {
		var err error
		status, err = r.Status(ctx, ev.Email)
		if err != nil {
			return newsletter.Outcome{}, fmt.Errorf("get contact status: %w", err)
		}
	}
	decision := newsletter.Decide(enabled, status)
	if decision.Subscribe {
		if err := r.SubscribeFromLogin(ctx, ev); err != nil {
			return newsletter.Outcome{}, fmt.Errorf("subscribe: %w", err)
		}
	}
	r.RecordOutcome(ev.UserID, decision.Outcome)
	return decision.Outcome, nil
}

func (r *newsletterReconciler) RecordOutcome(userID string, outcome newsletter.Outcome) {
	r.metrics.NewsletterReconcile(outcome.Label())
	r.log.Info("Newsletter reconcile finished", "user_id", userID, "outcome", outcome.Label())
}

// mirror writes the local status column. The column is informational only, so
// failures are logged and dropped.
func (r *newsletterReconciler) mirror(ctx context.Context, userID, status string) {
	if r.users == nil || userID == "" {
		return
	}
	if err := r.users.UpdateNewsletterStatus(dbctx.Context{Ctx: ctx}, userID, status); err != nil {
		r.log.Warn("Newsletter mirror update failed", "user_id", userID, "error", err)
	}
}

// Subscribe form.

const (
	MessageSubscribed        = "Subscribed successfully!"
	MessageAlreadySubscribed = "Already subscribed!"
)

type SubscribeInput struct {
	Email    string
	ClientIP string
	Session  *user.Session
}

type SubscribeResult struct {
	Message           string
	AlreadySubscribed bool
}

type SubscribeService interface {
	// Subscribe returns ErrInvalidEmail, ErrRateLimited, ErrSpamDetected, or
	// a provider error. Already-subscribed addresses succeed.
	Subscribe(ctx context.Context, in SubscribeInput) (*SubscribeResult, error)
}

type subscribeService struct {
	log     *logger.Logger
	list    ListProvider
	spam    SpamChecker
	limiter redis.RateLimiter
	users   repos.UserRepo
	metrics *observability.Metrics
}

func NewSubscribeService(log *logger.Logger, list ListProvider, spam SpamChecker, limiter redis.RateLimiter, users repos.UserRepo, metrics *observability.Metrics) SubscribeService {
	return &subscribeService{
		log:     log.With("service", "SubscribeService"),
		list:    list,
		spam:    spam,
		limiter: limiter,
		users:   users,
		metrics: metrics,
	}
}

func (s *subscribeService) Subscribe(ctx context.Context, in SubscribeInput) (*SubscribeResult, error) {
	if !newsletter.ValidEmail(in.Email) {
		s.metrics.NewsletterSubscribe("invalid")
		return nil, newsletter.ErrInvalidEmail
	}
	email := newsletter.NormalizeEmail(in.Email)

	if s.limited(ctx, in.ClientIP, email) {
		s.metrics.NewsletterSubscribe("rate_limited")
		return nil, newsletter.ErrRateLimited
	}

	if s.spam != nil {
		verdict, err := s.spam.CheckSpam(ctx, email)
		if err != nil {
			s.log.Warn("Spam check errored, allowing", "error", err)
		} else if verdict.IsSpam {
			s.log.Warn("Subscription rejected as spam", "email", email, "score", verdict.Score, "reason", verdict.Message)
			s.metrics.NewsletterSubscribe("spam")
			return nil, newsletter.ErrSpamDetected
		}
	}

	err := s.list.Subscribe(ctx, newsletter.Contact{Email: email, Source: newsletter.SourceSubscribeForm})
	if errors.Is(err, newsletter.ErrAlreadySubscribed) {
		s.metrics.NewsletterSubscribe("already_subscribed")
		return &SubscribeResult{Message: MessageAlreadySubscribed, AlreadySubscribed: true}, nil
	}
	if err != nil {
		s.metrics.NewsletterSubscribe("error")
		return nil, err
	}

	if in.Session.EmailMatches(email) && s.users != nil {
		if err := s.users.UpdateNewsletterStatus(dbctx.Context{Ctx: ctx}, in.Session.UserID, newsletter.MirrorSubscribed); err != nil {
			s.log.Warn("Subscription succeeded, but mirror update failed", "user_id", in.Session.UserID, "error", err)
		}
	}
	s.metrics.NewsletterSubscribe("subscribed")
	return &SubscribeResult{Message: MessageSubscribed}, nil
}

// limited counts the attempt against both the caller's IP and the address.
// Both are always recorded so neither can be probed for free.
func (s *subscribeService) limited(ctx context.Context, ip, email string) bool {
	if s.limiter == nil {
		return false
	}
	byIP := s.limiter.Limit(ctx, "ip:"+ip)
	byEmail := s.limiter.Limit(ctx, "email:"+email)
	decision := "allowed"
	switch {
	case byIP.FailedOpen || byEmail.FailedOpen:
		decision = "failed_open"
	case !byIP.Allowed || !byEmail.Allowed:
		decision = "limited"
	}
	s.metrics.RateLimitDecision("newsletter", decision)
	return !byIP.Allowed || !byEmail.Allowed
}
