package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/futureofgaming-backend/internal/data/repos"
	"github.com/yungbote/futureofgaming-backend/internal/domain/mail"
	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/observability"
	"github.com/yungbote/futureofgaming-backend/internal/platform/dbctx"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

//go:embed templates/publish_summary.html
var publishTemplates embed.FS

var publishSummaryTmpl = template.Must(template.New("publish_summary.html").Funcs(template.FuncMap{
	"score": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).ParseFS(publishTemplates, "templates/publish_summary.html"))

// PublishNotifyConfig addresses the summary e-mail.
type PublishNotifyConfig struct {
	From        string
	To          string
	SiteURL     string
	CalendarURL string
}

// PublishService promotes scheduled patents whose date has passed.
// Each step is exposed so a workflow can run it as its own activity.
type PublishService interface {
	Due(ctx context.Context) ([]patent.Scheduled, error)
	// PublishAll flips each row independently. A failed row is logged and
	// left scheduled for the next run.
	PublishAll(ctx context.Context, due []patent.Scheduled) []patent.Published
	Notify(ctx context.Context, published []patent.Published) error
	Run(ctx context.Context) (*patent.PublishResult, error)
}

type publishService struct {
	log     *logger.Logger
	patents repos.PatentRepo
	mailer  Mailer
	notify  PublishNotifyConfig
	metrics *observability.Metrics
	now     func() time.Time
}

func NewPublishService(log *logger.Logger, patents repos.PatentRepo, mailer Mailer, notify PublishNotifyConfig, metrics *observability.Metrics) PublishService {
	notify.SiteURL = strings.TrimRight(notify.SiteURL, "/")
	return &publishService{
		log:     log.With("service", "PublishService"),
		patents: patents,
		mailer:  mailer,
		notify:  notify,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *publishService) Due(ctx context.Context) ([]patent.Scheduled, error) {
	due, err := s.patents.ListDue(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list due patents: %w", err)
	}
	s.log.Info("Found patents ready to publish", "count", len(due))
	return due, nil
}

func (s *publishService) PublishAll(ctx context.Context, due []patent.Scheduled) []patent.Published {
	out := make([]patent.Published, 0, len(due))
	for _, row := range due {
		if err := ctx.Err(); err != nil {
			s.log.Warn("Publish interrupted", "remaining", len(due)-len(out), "error", err)
			break
		}
		if err := s.patents.MarkPublished(dbctx.Context{Ctx: ctx}, row.PatentID); err != nil {
			s.log.Error("Error publishing patent", "patent_number", row.PatentNumber, "error", err)
			continue
		}
		s.log.Info("Published patent", "patent_number", row.PatentNumber, "title", row.Title)
		out = append(out, row.ToPublished())
	}
	return out
}

func (s *publishService) Notify(ctx context.Context, published []patent.Published) error {
	if len(published) == 0 {
		return nil
	}
	if s.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}
	msg, err := s.summaryMessage(published)
	if err != nil {
		return err
	}
	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send publish summary: %w", err)
	}
	s.log.Info("Email notification sent", "count", len(published), "message_id", id)
	return nil
}

func (s *publishService) Run(ctx context.Context) (*patent.PublishResult, error) {
	due, err := s.Due(ctx)
	if err != nil {
		s.metrics.PublishRun("error", 0)
		return nil, err
	}
	if len(due) == 0 {
		s.metrics.PublishRun("empty", 0)
		return &patent.PublishResult{Success: true, Message: patent.PublishMessageNone, Count: 0}, nil
	}
	published := s.PublishAll(ctx, due)
	if err := s.Notify(ctx, published); err != nil {
		s.log.Error("Error sending email notification", "error", err)
	}
	s.metrics.PublishRun("published", len(published))
	return &patent.PublishResult{
		Success: true,
		Message: patent.PublishMessageDone,
		Count:   len(published),
		Patents: published,
	}, nil
}

func (s *publishService) summaryMessage(published []patent.Published) (mail.Message, error) {
	now := s.now()
	headline := fmt.Sprintf("%d patent analysis has been automatically published:", len(published))
	if len(published) > 1 {
		headline = fmt.Sprintf("%d patent analyses have been automatically published:", len(published))
	}
	var buf bytes.Buffer
	err := publishSummaryTmpl.Execute(&buf, map[string]any{
		"Date":        now.Format("Monday, January 2, 2006"),
		"Headline":    headline,
		"Patents":     published,
		"SiteURL":     s.notify.SiteURL,
		"CalendarURL": s.notify.CalendarURL,
	})
	if err != nil {
		return mail.Message{}, fmt.Errorf("render publish summary: %w", err)
	}
	return mail.Message{
		From:    s.notify.From,
		To:      []string{s.notify.To},
		Subject: PublishSubject(len(published), now),
		HTML:    buf.String(),
	}, nil
}

// PublishSubject is the summary e-mail subject line.
func PublishSubject(n int, day time.Time) string {
	return fmt.Sprintf("✅ %d Patent Analysis Published - %s", n, day.Format("Jan 2, 2006"))
}
