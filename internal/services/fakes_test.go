package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/futureofgaming-backend/internal/clients/redis"
	"github.com/yungbote/futureofgaming-backend/internal/domain/mail"
	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
)

type fakePatentRepo struct {
	mu        sync.Mutex
	sources   map[string]patent.ScorecardInput
	sourceErr error
	sourceHit int

	due         []patent.Scheduled
	dueErr      error
	failPublish map[uuid.UUID]bool
	published   []uuid.UUID

	featured      *patent.Summary
	recent        []patent.Summary
	recentExclude *uuid.UUID
	recentLimit   int
	details       map[string]*patent.Detail
	nav           patent.Nav
	navErr        error
}

func (f *fakePatentRepo) GetScorecardSource(_ dbctx.Context, n string) (*patent.ScorecardInput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sourceHit++
	if f.sourceErr != nil {
		return nil, f.sourceErr
	}
	in, ok := f.sources[n]
	if !ok {
		return nil, patent.ErrNotFound
	}
	in = in.WithDefaults()
	return &in, nil
}

func (f *fakePatentRepo) ListDue(dbctx.Context) ([]patent.Scheduled, error) {
	return f.due, f.dueErr
}

func (f *fakePatentRepo) MarkPublished(_ dbctx.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPublish[id] {
		return errors.New("deadlock detected")
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakePatentRepo) Featured(dbctx.Context) (*patent.Summary, error) { return f.featured, nil }

func (f *fakePatentRepo) Recent(_ dbctx.Context, exclude *uuid.UUID, limit int) ([]patent.Summary, error) {
	f.recentExclude = exclude
	f.recentLimit = limit
	return f.recent, nil
}

func (f *fakePatentRepo) Archive(dbctx.Context) ([]patent.Summary, error) { return f.recent, nil }

func (f *fakePatentRepo) Detail(_ dbctx.Context, n string) (*patent.Detail, error) {
	if d, ok := f.details[n]; ok {
		return d, nil
	}
	return nil, patent.ErrNotFound
}

func (f *fakePatentRepo) Nav(dbctx.Context, string) (patent.Nav, error) { return f.nav, f.navErr }

type fakeUserRepo struct {
	mu      sync.Mutex
	updates map[string]string
	err     error
}

func (f *fakeUserRepo) GetByID(dbctx.Context, string) (*user.User, error) { return nil, nil }

func (f *fakeUserRepo) UpdateNewsletterStatus(_ dbctx.Context, userID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.updates == nil {
		f.updates = map[string]string{}
	}
	f.updates[userID] = status
	return nil
}

type fakeList struct {
	mu           sync.Mutex
	status       newsletter.ContactStatus
	statusErr    error
	subscribeErr error
	subscribed   []newsletter.Contact
}

func (f *fakeList) GetStatus(context.Context, string) (newsletter.ContactStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeList) Subscribe(_ context.Context, c newsletter.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, c)
	return f.subscribeErr
}

type fakeSpam struct {
	verdict newsletter.SpamVerdict
	err     error
	calls   int
}

func (f *fakeSpam) CheckSpam(context.Context, string) (newsletter.SpamVerdict, error) {
	f.calls++
	return f.verdict, f.err
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg_1", nil
}

type fakeFlags bool

func (f fakeFlags) AutoSubscribeOnLogin() bool { return bool(f) }

// fakeLimiter denies identifiers listed in deny.
type fakeLimiter struct {
	deny map[string]bool
	seen []string
}

func (f *fakeLimiter) Limit(_ context.Context, id string) redis.LimitResult {
	f.seen = append(f.seen, id)
	if f.deny[id] {
		return redis.LimitResult{Allowed: false}
	}
	return redis.LimitResult{Allowed: true, Remaining: 2}
}
