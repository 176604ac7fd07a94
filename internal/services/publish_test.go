package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
)

func strp(s string) *string { return &s }

func f64p(v float64) *float64 { return &v }

func newTestPublishService(t *testing.T, repo *fakePatentRepo, mailer Mailer) *publishService {
	t.Helper()
	svc := NewPublishService(testLogger(t), repo, mailer, PublishNotifyConfig{
		From:        "noreply@auth.futureofgaming.com",
		To:          "contact@futureofgaming.com",
		SiteURL:     "https://futureofgaming.com/",
		CalendarURL: "http://localhost:5001/calendar",
	}, nil).(*publishService)
	svc.now = func() time.Time { return time.Date(2026, time.March, 9, 14, 0, 0, 0, time.UTC) }
	return svc
}

func TestPublishRunIsolatesRowFailures(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	repo := &fakePatentRepo{
		due: []patent.Scheduled{
			{PatentID: ids[0], PatentNumber: "US1", Title: "One", AssigneeName: strp("Nintendo"), GamingRelevanceScore: f64p(88)},
			{PatentID: ids[1], PatentNumber: "US2", Title: "Two"},
			{PatentID: ids[2], PatentNumber: "US3", Title: "Three & <More>"},
		},
		failPublish: map[uuid.UUID]bool{ids[1]: true},
	}
	mailer := &fakeMailer{}
	svc := newTestPublishService(t, repo, mailer)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success || res.Count != 2 || res.Message != patent.PublishMessageDone {
		t.Fatalf("result: %+v", res)
	}
	if res.Patents[0].Company != "Nintendo" || res.Patents[0].Score != 88 {
		t.Fatalf("first row: %+v", res.Patents[0])
	}
	if res.Patents[1].PatentNumber != "US3" || res.Patents[1].Company != "Unknown" || res.Patents[1].Score != 0 {
		t.Fatalf("second row: %+v", res.Patents[1])
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("emails sent: want=1 got=%d", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.Subject != "✅ 2 Patent Analysis Published - Mar 9, 2026" {
		t.Fatalf("subject: %q", msg.Subject)
	}
	if msg.From != "noreply@auth.futureofgaming.com" || len(msg.To) != 1 || msg.To[0] != "contact@futureofgaming.com" {
		t.Fatalf("addressing: from=%q to=%v", msg.From, msg.To)
	}
	for _, want := range []string{
		"Monday, March 9, 2026",
		"2 patent analyses have been automatically published:",
		`href="https://futureofgaming.com/patent/US1"`,
		"Nintendo | Relevance Score: 88/100",
		"Three &amp; &lt;More&gt;",
		`href="http://localhost:5001/calendar"`,
	} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("email body missing %q", want)
		}
	}
	if strings.Contains(msg.HTML, "/patent/US2") {
		t.Fatalf("failed row listed in email")
	}
}

func TestPublishRunNothingDue(t *testing.T) {
	mailer := &fakeMailer{}
	svc := newTestPublishService(t, &fakePatentRepo{}, mailer)
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success || res.Count != 0 || res.Message != patent.PublishMessageNone || res.Patents != nil {
		t.Fatalf("result: %+v", res)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("no email expected")
	}
}

func TestPublishRunNotifyFailureDoesNotFail(t *testing.T) {
	repo := &fakePatentRepo{due: []patent.Scheduled{{PatentID: uuid.New(), PatentNumber: "US1", Title: "One"}}}
	svc := newTestPublishService(t, repo, &fakeMailer{err: errors.New("resend down")})
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("count: got=%d", res.Count)
	}
	if err := svc.Notify(context.Background(), res.Patents); err == nil {
		t.Fatalf("Notify should report mailer errors")
	}
}

func TestPublishRunQueryError(t *testing.T) {
	svc := newTestPublishService(t, &fakePatentRepo{dueErr: errors.New("db down")}, &fakeMailer{})
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestPublishSubjectSingular(t *testing.T) {
	svc := newTestPublishService(t, &fakePatentRepo{}, &fakeMailer{})
	msg, err := svc.summaryMessage([]patent.Published{{PatentNumber: "US1", Title: "One", Company: "Unknown"}})
	if err != nil {
		t.Fatalf("summaryMessage: %v", err)
	}
	if !strings.Contains(msg.HTML, "1 patent analysis has been automatically published:") {
		t.Fatalf("singular headline missing")
	}
}
