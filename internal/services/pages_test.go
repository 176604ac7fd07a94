package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
)

func TestPageServiceHomeExcludesFeatured(t *testing.T) {
	featured := &patent.Summary{PatentID: uuid.New(), PatentNumber: "US1"}
	repo := &fakePatentRepo{featured: featured, recent: []patent.Summary{{PatentNumber: "US2"}}}
	svc := NewPageService(testLogger(t), repo, nil)

	home, err := svc.Home(context.Background())
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	if home.Featured != featured || len(home.Recent) != 1 {
		t.Fatalf("home: %+v", home)
	}
	if repo.recentExclude == nil || *repo.recentExclude != featured.PatentID || repo.recentLimit != 3 {
		t.Fatalf("recent called with exclude=%v limit=%d", repo.recentExclude, repo.recentLimit)
	}

	repo.featured = nil
	if _, err := svc.Home(context.Background()); err != nil {
		t.Fatalf("Home without featured: %v", err)
	}
	if repo.recentExclude != nil {
		t.Fatalf("exclude should be nil without a featured patent")
	}
}

func TestPageServicePatent(t *testing.T) {
	detail := &patent.Detail{Summary: patent.Summary{PatentNumber: "US1"}}
	repo := &fakePatentRepo{
		details: map[string]*patent.Detail{"US1": detail},
		navErr:  errors.New("window query failed"),
	}
	svc := NewPageService(testLogger(t), repo, nil)

	view, err := svc.Patent(context.Background(), "US1")
	if err != nil {
		t.Fatalf("Patent: %v", err)
	}
	if view.Patent != detail || view.Nav != (patent.Nav{}) {
		t.Fatalf("view: %+v", view)
	}
	if _, err := svc.Patent(context.Background(), "US404"); !errors.Is(err, patent.ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestPageServiceNewsletterStatus(t *testing.T) {
	sess := &user.Session{UserID: "u1", Email: "Ada@Example.com"}

	svc := NewPageService(testLogger(t), &fakePatentRepo{}, &fakeList{status: newsletter.StatusSubscribed})
	if s := svc.NewsletterStatus(context.Background(), sess); s == nil || *s != "subscribed" {
		t.Fatalf("subscribed: %v", s)
	}
	if s := svc.NewsletterStatus(context.Background(), nil); s != nil {
		t.Fatalf("anonymous: %v", *s)
	}

	svc = NewPageService(testLogger(t), &fakePatentRepo{}, &fakeList{statusErr: errors.New("timeout")})
	if s := svc.NewsletterStatus(context.Background(), sess); s != nil {
		t.Fatalf("errors must degrade to nil, got %v", *s)
	}
}
