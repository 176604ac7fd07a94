package workflows

import (
	"context"
	"fmt"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/services"
)

// Activities adapts the services to Temporal activities. Each method is one
// independently retried step.
type Activities struct {
	Log        *logger.Logger
	Publish    services.PublishService
	Newsletter services.NewsletterReconciler
}

func (a *Activities) QueryScheduled(ctx context.Context) ([]patent.Scheduled, error) {
	if a == nil || a.Publish == nil {
		return nil, fmt.Errorf("publish activity not configured")
	}
	return a.Publish.Due(ctx)
}

func (a *Activities) PublishPatents(ctx context.Context, due []patent.Scheduled) ([]patent.Published, error) {
	if a == nil || a.Publish == nil {
		return nil, fmt.Errorf("publish activity not configured")
	}
	return a.Publish.PublishAll(ctx, due), nil
}

func (a *Activities) SendNotification(ctx context.Context, published []patent.Published) error {
	if a == nil || a.Publish == nil {
		return fmt.Errorf("publish activity not configured")
	}
	return a.Publish.Notify(ctx, published)
}

func (a *Activities) CheckFeatureFlag(ctx context.Context) (bool, error) {
	if a == nil || a.Newsletter == nil {
		return false, fmt.Errorf("newsletter activity not configured")
	}
	return a.Newsletter.Enabled(), nil
}

func (a *Activities) ContactStatus(ctx context.Context, email string) (newsletter.ContactStatus, error) {
	if a == nil || a.Newsletter == nil {
		return "", fmt.Errorf("newsletter activity not configured")
	}
	return a.Newsletter.Status(ctx, email)
}

func (a *Activities) RecordOutcome(ctx context.Context, userID string, outcome newsletter.Outcome) error {
	if a == nil || a.Newsletter == nil {
		return fmt.Errorf("newsletter activity not configured")
	}
	a.Newsletter.RecordOutcome(userID, outcome)
	return nil
}

func (a *Activities) SubscribeContact(ctx context.Context, ev newsletter.LoginEvent) error {
	if a == nil || a.Newsletter == nil {
		return fmt.Errorf("newsletter activity not configured")
	}
	return a.Newsletter.SubscribeFromLogin(ctx, ev)
}
